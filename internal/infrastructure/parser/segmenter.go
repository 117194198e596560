package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"PhrasebankScanner/internal/phrase"
)

var lineBreak = regexp.MustCompile(`(?i)<br\s*/?>`)

// Segment splits block markup on line breaks and returns the normalized
// plain text of each piece in document order. Empty pieces are dropped.
func Segment(markup string) []string {
	pieces := lineBreak.Split(markup, -1)
	out := make([]string, 0, len(pieces))
	for _, piece := range pieces {
		text := phrase.Normalize(stripMarkup(piece))
		if text == "" {
			continue
		}
		out = append(out, text)
	}
	return out
}

// stripMarkup parses a fragment and keeps only its text, which also
// resolves character entities.
func stripMarkup(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return fragment
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	return doc.Text()
}
