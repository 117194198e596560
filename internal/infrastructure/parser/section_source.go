package parser

import (
	"context"
	"fmt"
	"log/slog"

	"PhrasebankScanner/internal/domain"
	"PhrasebankScanner/internal/ports"
)

// SectionSource implements ports.SectionSource by fetching a page and walking it.
type SectionSource struct {
	fetcher *Fetcher
	walker  *Walker
	logger  *slog.Logger
}

var _ ports.SectionSource = (*SectionSource)(nil)

// NewSectionSource wires a fetcher with a walker.
func NewSectionSource(fetcher *Fetcher, walker *Walker, log *slog.Logger) *SectionSource {
	return &SectionSource{
		fetcher: fetcher,
		walker:  walker,
		logger:  log,
	}
}

// Collect fetches the section page and extracts its phrases. Errors leave an
// empty result; callers decide whether they are fatal.
func (s *SectionSource) Collect(ctx context.Context, page domain.SectionPage) (domain.DocumentResult, error) {
	if s.fetcher == nil || s.walker == nil {
		return domain.NewDocumentResult(), fmt.Errorf("section source is not configured")
	}

	s.debug("collect section", "section", page.Name, "url", page.URL)
	doc, err := s.fetcher.Fetch(ctx, page.URL)
	if err != nil {
		return domain.NewDocumentResult(), fmt.Errorf("section %s: %w", page.Name, err)
	}

	result, err := s.walker.Walk(doc, page.Name)
	if err != nil {
		return result, err
	}

	s.debug("section collected", "section", page.Name, "phrases", result.Count())
	return result, nil
}

func (s *SectionSource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
