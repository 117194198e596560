package ports

import (
	"context"
	"time"

	"PhrasebankScanner/internal/domain"
)

// SectionSource retrieves one section page and turns it into phrase records.
type SectionSource interface {
	Collect(ctx context.Context, page domain.SectionPage) (domain.DocumentResult, error)
}

// CorpusSink persists a finished corpus (JSON file, SQL table, ...).
type CorpusSink interface {
	Name() string
	Store(ctx context.Context, corpus *domain.Corpus) error
}

// PhraseReader serves stored phrases to lookup clients.
type PhraseReader interface {
	BySection(ctx context.Context, section, subsection string) ([]domain.PhraseRecord, error)
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.PhraseRecord, error)
	Info(ctx context.Context) (domain.CorpusInfo, error)
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
