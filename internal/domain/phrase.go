package domain

import (
	"errors"
	"sort"
	"time"
)

// SchemaVersion is stamped into every exported corpus.
const SchemaVersion = "2.0"

// DefaultSubsection labels phrases seen before the first heading of a document.
const DefaultSubsection = "general"

var (
	// ErrContentRegionNotFound reports that no layout selector matched the document.
	ErrContentRegionNotFound = errors.New("content region not found")
	// ErrFetch wraps failures to retrieve or parse a section page.
	ErrFetch = errors.New("fetch section")
	// ErrCorpusNotFound means no scrape has been stored yet.
	ErrCorpusNotFound = errors.New("corpus not found")
)

// SectionPage is one configured section and the URL it is scraped from.
type SectionPage struct {
	Name string
	URL  string
}

// Frequency is a coarse usage-frequency bucket derived from phrase length.
type Frequency string

const (
	FrequencyVeryHigh Frequency = "very_high"
	FrequencyHigh     Frequency = "high"
	FrequencyMedium   Frequency = "medium"
)

// Valid reports whether f is one of the known buckets.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyVeryHigh, FrequencyHigh, FrequencyMedium:
		return true
	}
	return false
}

// PhraseRecord is one classified phrase extracted from a section page.
type PhraseRecord struct {
	ID            string    `json:"id"`
	Text          string    `json:"text"`
	Usage         string    `json:"usage"`
	AcademicScore float64   `json:"academicScore"`
	Frequency     Frequency `json:"frequency"`
	Examples      []string  `json:"examples"`
	Section       string    `json:"section"`
	Subsection    string    `json:"subsection"`
}

// DocumentResult groups the phrases of one section page by subsection label.
type DocumentResult struct {
	Subsections map[string][]PhraseRecord
	order       []string
}

// NewDocumentResult returns an empty result ready for Append.
func NewDocumentResult() DocumentResult {
	return DocumentResult{Subsections: map[string][]PhraseRecord{}}
}

// Append adds a record to its subsection, creating the list on first use.
func (d *DocumentResult) Append(rec PhraseRecord) {
	if d.Subsections == nil {
		d.Subsections = map[string][]PhraseRecord{}
	}
	if _, ok := d.Subsections[rec.Subsection]; !ok {
		d.order = append(d.order, rec.Subsection)
	}
	d.Subsections[rec.Subsection] = append(d.Subsections[rec.Subsection], rec)
}

// Labels returns subsection labels in the order they were first seen.
func (d DocumentResult) Labels() []string {
	if len(d.order) == len(d.Subsections) {
		return append([]string(nil), d.order...)
	}
	// Built by hand without Append; fall back to whatever the map holds.
	labels := make([]string, 0, len(d.Subsections))
	seen := map[string]bool{}
	for _, l := range d.order {
		if _, ok := d.Subsections[l]; ok && !seen[l] {
			labels = append(labels, l)
			seen[l] = true
		}
	}
	var rest []string
	for l := range d.Subsections {
		if !seen[l] {
			rest = append(rest, l)
		}
	}
	sort.Strings(rest)
	return append(labels, rest...)
}

// Records flattens the result in subsection order.
func (d DocumentResult) Records() []PhraseRecord {
	out := make([]PhraseRecord, 0, d.Count())
	for _, label := range d.Labels() {
		out = append(out, d.Subsections[label]...)
	}
	return out
}

// Count is the number of phrases across all subsections.
func (d DocumentResult) Count() int {
	total := 0
	for _, records := range d.Subsections {
		total += len(records)
	}
	return total
}

// Metadata describes a scraping run.
type Metadata struct {
	Source    string    `json:"source"`
	URL       string    `json:"url"`
	ScrapedAt time.Time `json:"scrapedAt"`
	Version   string    `json:"version"`
	RunID     string    `json:"runId"`
}

// Corpus is the full result of one run: section name to DocumentResult.
type Corpus struct {
	Metadata Metadata
	Sections map[string]DocumentResult
	order    []string
}

// NewCorpus creates an empty corpus stamped with metadata.
func NewCorpus(meta Metadata) *Corpus {
	return &Corpus{Metadata: meta, Sections: map[string]DocumentResult{}}
}

// Put stores the result for a section, replacing any previous value.
func (c *Corpus) Put(section string, result DocumentResult) {
	if c.Sections == nil {
		c.Sections = map[string]DocumentResult{}
	}
	if _, ok := c.Sections[section]; !ok {
		c.order = append(c.order, section)
	}
	c.Sections[section] = result
}

// SectionNames returns sections in insertion order.
func (c *Corpus) SectionNames() []string {
	if len(c.order) == len(c.Sections) {
		return append([]string(nil), c.order...)
	}
	names := make([]string, 0, len(c.Sections))
	for name := range c.Sections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TotalPhrases sums every subsection list length across all sections.
func (c *Corpus) TotalPhrases() int {
	total := 0
	for _, doc := range c.Sections {
		total += doc.Count()
	}
	return total
}

// CorpusInfo summarizes stored data for lookup clients.
type CorpusInfo struct {
	Metadata     Metadata `json:"metadata"`
	TotalPhrases int      `json:"totalPhrases"`
	Sections     []string `json:"sections"`
}

// SearchOptions narrows a phrase search.
type SearchOptions struct {
	Section  string
	MinScore float64
	Limit    int
}
