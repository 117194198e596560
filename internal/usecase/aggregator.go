package usecase

import "PhrasebankScanner/internal/domain"

// Aggregator merges per-section results into a single corpus.
type Aggregator struct {
	corpus *domain.Corpus
}

// NewAggregator starts an empty corpus stamped with run metadata.
func NewAggregator(meta domain.Metadata) *Aggregator {
	return &Aggregator{corpus: domain.NewCorpus(meta)}
}

// Add stores a section's result under its name, replacing an earlier one.
func (a *Aggregator) Add(section string, result domain.DocumentResult) {
	if result.Subsections == nil {
		result = domain.NewDocumentResult()
	}
	a.corpus.Put(section, result)
}

// Total is the number of phrases across every section and subsection.
func (a *Aggregator) Total() int {
	return a.corpus.TotalPhrases()
}

// Corpus returns the aggregated corpus.
func (a *Aggregator) Corpus() *domain.Corpus {
	return a.corpus
}
