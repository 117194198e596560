package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"PhrasebankScanner/internal/domain"
	"PhrasebankScanner/internal/ports"
)

const (
	defaultSearchLimit   = 20
	defaultFrequentLimit = 10
)

// ErrEmptyQuery is returned when a search has nothing to look for.
var ErrEmptyQuery = errors.New("search query is empty")

// Lookup answers suggestion queries over stored phrases.
type Lookup struct {
	reader ports.PhraseReader
}

// NewLookup wraps a phrase reader.
func NewLookup(reader ports.PhraseReader) *Lookup {
	return &Lookup{reader: reader}
}

// BySection lists a section's phrases, optionally narrowed to one subsection.
func (l *Lookup) BySection(ctx context.Context, section, subsection string) ([]domain.PhraseRecord, error) {
	if l.reader == nil {
		return nil, fmt.Errorf("phrase reader is not configured")
	}
	return l.reader.BySection(ctx, section, subsection)
}

// Search finds phrases containing query, best academic score first.
func (l *Lookup) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.PhraseRecord, error) {
	if l.reader == nil {
		return nil, fmt.Errorf("phrase reader is not configured")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultSearchLimit
	}
	return l.reader.Search(ctx, query, opts)
}

// HighFrequency returns a section's very_high and high frequency phrases,
// best academic score first.
func (l *Lookup) HighFrequency(ctx context.Context, section string, limit int) ([]domain.PhraseRecord, error) {
	records, err := l.BySection(ctx, section, "")
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultFrequentLimit
	}

	frequent := make([]domain.PhraseRecord, 0, len(records))
	for _, rec := range records {
		if rec.Frequency == domain.FrequencyVeryHigh || rec.Frequency == domain.FrequencyHigh {
			frequent = append(frequent, rec)
		}
	}
	sort.SliceStable(frequent, func(i, j int) bool {
		return frequent[i].AcademicScore > frequent[j].AcademicScore
	})

	if len(frequent) > limit {
		frequent = frequent[:limit]
	}
	return frequent, nil
}

// Info describes the stored corpus.
func (l *Lookup) Info(ctx context.Context) (domain.CorpusInfo, error) {
	if l.reader == nil {
		return domain.CorpusInfo{}, fmt.Errorf("phrase reader is not configured")
	}
	return l.reader.Info(ctx)
}
