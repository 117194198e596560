package phrase

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)

// Normalize collapses whitespace runs (including non-breaking spaces) to a
// single space and trims the result.
func Normalize(raw string) string {
	s := strings.ReplaceAll(raw, "&nbsp;", " ")
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return norm.NFC.String(s)
}

// Length counts characters, not bytes.
func Length(text string) int {
	return utf8.RuneCountInString(text)
}

// Label derives a subsection slug from heading text. It reports false when
// the heading is too short (3 characters or fewer once normalized) or
// contains nothing a slug can be built from.
func Label(heading string) (string, bool) {
	text := Normalize(heading)
	if Length(text) <= 3 {
		return "", false
	}
	label := nonAlnumRun.ReplaceAllString(strings.ToLower(text), "_")
	label = strings.Trim(label, "_")
	if label == "" {
		return "", false
	}
	return label, true
}
