package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"PhrasebankScanner/internal/domain"
	"PhrasebankScanner/internal/ports"
)

// PipelineDeps wires all driven adapters into the scrape pipeline.
type PipelineDeps struct {
	Source   ports.SectionSource
	Sections []domain.SectionPage
	Sinks    []ports.CorpusSink
	// SourceName and BaseURL are stamped into the corpus metadata.
	SourceName string
	BaseURL    string
	Logger     *slog.Logger
	Now        func() time.Time
}

// Pipeline implements one full scrape run: every section in order, then every sink.
type Pipeline struct {
	source     ports.SectionSource
	sections   []domain.SectionPage
	sinks      []ports.CorpusSink
	sourceName string
	baseURL    string
	logger     *slog.Logger
	now        func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		source:     deps.Source,
		sections:   deps.Sections,
		sinks:      deps.Sinks,
		sourceName: deps.SourceName,
		baseURL:    deps.BaseURL,
		logger:     deps.Logger,
		now:        now,
	}
}

// Run collects every configured section and hands the corpus to the sinks.
// A failing section is logged and contributes an empty result; it never
// aborts the batch. Sink failures are returned.
func (p *Pipeline) Run(ctx context.Context) (*domain.Corpus, error) {
	agg := NewAggregator(domain.Metadata{
		Source:    p.sourceName,
		URL:       p.baseURL,
		ScrapedAt: p.now().UTC(),
		Version:   domain.SchemaVersion,
		RunID:     uuid.NewString(),
	})

	if p.source == nil {
		return agg.Corpus(), nil
	}

	for _, page := range p.sections {
		if err := ctx.Err(); err != nil {
			return agg.Corpus(), fmt.Errorf("scrape cancelled before %s: %w", page.Name, err)
		}

		result, err := p.source.Collect(ctx, page)
		if err != nil {
			p.warn(sectionWarning(err), "section", page.Name, "url", page.URL, "error", err)
			result = domain.NewDocumentResult()
		}
		agg.Add(page.Name, result)

		p.info("section processed", "section", page.Name, "phrases", result.Count(), "subsections", len(result.Subsections))
		for _, label := range result.Labels() {
			p.debug("subsection", "section", page.Name, "subsection", label, "phrases", len(result.Subsections[label]))
		}
	}

	corpus := agg.Corpus()
	p.info("scrape finished", "sections", len(corpus.Sections), "total_phrases", agg.Total(), "run_id", corpus.Metadata.RunID)

	for _, sink := range p.sinks {
		if sink == nil {
			continue
		}
		if err := sink.Store(ctx, corpus); err != nil {
			return corpus, fmt.Errorf("store corpus in %s: %w", sink.Name(), err)
		}
		p.debug("corpus stored", "sink", sink.Name())
	}

	return corpus, nil
}

func sectionWarning(err error) string {
	switch {
	case errors.Is(err, domain.ErrContentRegionNotFound):
		return "content region not found, section left empty"
	case errors.Is(err, domain.ErrFetch):
		return "section fetch failed, section left empty"
	default:
		return "section failed, section left empty"
	}
}

func (p *Pipeline) info(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

func (p *Pipeline) debug(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
