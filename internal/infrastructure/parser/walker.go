package parser

import (
	"fmt"
	"log/slog"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"PhrasebankScanner/internal/domain"
	"PhrasebankScanner/internal/layout"
	"PhrasebankScanner/internal/phrase"
)

// Walker turns one parsed section page into classified phrase records.
type Walker struct {
	layout     layout.Layout
	filter     *phrase.Filter
	classifier *phrase.Classifier
	logger     *slog.Logger
}

// NewWalker wires a layout and rule lists; logger may be nil.
func NewWalker(l layout.Layout, rules phrase.Rules, log *slog.Logger) *Walker {
	return &Walker{
		layout:     l,
		filter:     phrase.NewFilter(rules),
		classifier: phrase.NewClassifier(rules),
		logger:     log,
	}
}

// walkState is the accumulator folded over the document.
type walkState struct {
	section    string
	subsection Subsection
	ordinals   map[string]int
	result     domain.DocumentResult
}

// Walk extracts phrases from doc in document order. When no content region
// is found it returns an empty result together with ErrContentRegionNotFound.
func (w *Walker) Walk(doc *goquery.Document, section string) (domain.DocumentResult, error) {
	regions, selector := w.ContentRegion(doc)
	if len(regions) == 0 {
		return domain.NewDocumentResult(), fmt.Errorf("section %s: %w", section, domain.ErrContentRegionNotFound)
	}
	w.debug("content region", "section", section, "selector", selector, "regions", len(regions))

	st := walkState{
		section:    section,
		subsection: NewSubsection(),
		ordinals:   map[string]int{},
		result:     domain.NewDocumentResult(),
	}
	for _, region := range regions {
		st = w.fold(st, region)
	}

	w.debug("section walked", "section", section, "phrases", st.result.Count(), "subsections", len(st.result.Subsections))
	return st.result, nil
}

// ContentRegion applies the layout's fallback chain and returns the outermost
// matches of the first selector that matches anything.
func (w *Walker) ContentRegion(doc *goquery.Document) ([]Node, string) {
	if doc == nil || doc.Selection == nil {
		return nil, ""
	}
	for _, strategy := range w.layout.Strategies {
		matched := doc.FindMatcher(strategy.Matcher)
		if matched.Length() == 0 {
			continue
		}
		return outermost(matched), strategy.Selector
	}
	return nil, ""
}

func (w *Walker) fold(st walkState, n Node) walkState {
	switch n.Kind() {
	case KindHeading:
		st.subsection = st.subsection.Observe(KindHeading, n.Text())
		return st
	case KindParagraph:
		markup, err := n.Markup()
		if err != nil {
			w.debug("skip block", "section", st.section, "error", err)
			return st
		}
		for _, text := range Segment(markup) {
			st = w.collect(st, text)
		}
		return st
	default:
		if n.IsListItem() {
			return w.foldListItem(st, n)
		}
		for _, child := range n.Children() {
			st = w.fold(st, child)
		}
		return st
	}
}

// foldListItem handles an li that wraps block elements: its own inline text
// is one candidate and each block child is folded separately.
func (w *Walker) foldListItem(st walkState, n Node) walkState {
	for _, part := range n.Parts() {
		if part.Block != nil {
			st = w.fold(st, *part.Block)
			continue
		}
		for _, text := range Segment(part.Inline) {
			st = w.collect(st, text)
		}
	}
	return st
}

func (w *Walker) collect(st walkState, text string) walkState {
	if verdict := w.filter.Verdict(text); verdict != phrase.Accepted {
		w.debug("phrase rejected", "section", st.section, "reason", string(verdict), "text", text)
		return st
	}

	score, freq := w.classifier.Score(text)
	label := st.subsection.Label()
	st.ordinals[label]++

	st.result.Append(domain.PhraseRecord{
		ID:            RecordID(st.section, label, st.ordinals[label]),
		Text:          text,
		AcademicScore: score,
		Frequency:     freq,
		Examples:      []string{text},
		Section:       st.section,
		Subsection:    label,
	})
	return st
}

// RecordID derives the stable identifier of the ordinal-th phrase of a subsection.
func RecordID(section, subsection string, ordinal int) string {
	return fmt.Sprintf("%s_%s_%d", section, subsection, ordinal)
}

// outermost drops matches nested inside other matches so no block is walked twice.
func outermost(sel *goquery.Selection) []Node {
	set := make(map[*html.Node]struct{}, len(sel.Nodes))
	for _, n := range sel.Nodes {
		set[n] = struct{}{}
	}

	out := make([]Node, 0, len(sel.Nodes))
	for i, n := range sel.Nodes {
		nested := false
		for p := n.Parent; p != nil; p = p.Parent {
			if _, ok := set[p]; ok {
				nested = true
				break
			}
		}
		if !nested {
			out = append(out, Node{sel: sel.Eq(i)})
		}
	}
	return out
}

func (w *Walker) debug(msg string, args ...interface{}) {
	if w.logger != nil {
		w.logger.Debug(msg, args...)
	}
}
