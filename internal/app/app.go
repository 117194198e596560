package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"PhrasebankScanner/internal/config"
	"PhrasebankScanner/internal/domain"
	"PhrasebankScanner/internal/infrastructure/export"
	"PhrasebankScanner/internal/infrastructure/httpapi"
	"PhrasebankScanner/internal/infrastructure/parser"
	"PhrasebankScanner/internal/infrastructure/scheduler"
	"PhrasebankScanner/internal/infrastructure/storage"
	"PhrasebankScanner/internal/layout"
	"PhrasebankScanner/internal/logging"
	"PhrasebankScanner/internal/ports"
	"PhrasebankScanner/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	lookup   *usecase.Lookup
	repo     *storage.SQLRepository
}

// New builds the scrape pipeline and, when a database is configured, the
// SQL store that backs both persistence and lookups.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	registry := layout.NewRegistry()
	siteLayout, err := registry.Resolve(cfg.Source.Layout)
	if err != nil {
		return nil, err
	}

	walker := parser.NewWalker(siteLayout, cfg.Rules.PhraseRules(), baseLogger.With("component", "walker"))
	fetcher := parser.NewFetcher(nil, parser.FetchOptions{
		Timeout:   cfg.Fetch.Timeout,
		Retries:   cfg.Fetch.Retries,
		Delay:     cfg.Fetch.Delay,
		UserAgent: cfg.Fetch.UserAgent,
	}, baseLogger.With("component", "fetcher"))
	source := parser.NewSectionSource(fetcher, walker, baseLogger.With("component", "source"))

	var sinks []ports.CorpusSink
	if cfg.Output.JSONPath != "" {
		sinks = append(sinks, export.NewJSONWriter(cfg.Output.JSONPath))
	}

	var repo *storage.SQLRepository
	if cfg.Database.DSN != "" {
		repo, err = storage.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open phrase store: %w", err)
		}
		sinks = append(sinks, repo)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Sections:   cfg.SectionPages(),
		Sinks:      sinks,
		SourceName: cfg.Source.Name,
		BaseURL:    cfg.Source.BaseURL,
		Logger:     baseLogger.With("component", "pipeline"),
	})

	var reader ports.PhraseReader
	if repo != nil {
		reader = repo
	}

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		pipeline: pipeline,
		lookup:   usecase.NewLookup(reader),
		repo:     repo,
	}, nil
}

// Scrape performs one full extraction run and stores the result.
func (a *Application) Scrape(ctx context.Context) (*domain.Corpus, error) {
	return a.pipeline.Run(ctx)
}

// Lookup exposes the query side over the stored corpus.
func (a *Application) Lookup() *usecase.Lookup {
	return a.lookup
}

// Serve runs the lookup API until ctx is cancelled. With a cron expression
// configured the dataset is also rebuilt on schedule; scrapeFirst triggers one
// rebuild before listening.
func (a *Application) Serve(ctx context.Context, scrapeFirst bool) error {
	if a.repo == nil {
		return errors.New("serve requires a configured database")
	}

	if scrapeFirst {
		if _, err := a.Scrape(ctx); err != nil {
			return fmt.Errorf("initial scrape: %w", err)
		}
	}

	var jobs *usecase.Scheduler
	if expr := a.cfg.Scheduler.CronExpression; expr != "" {
		driver, err := scheduler.NewCronScheduler(expr, a.cfg.Scheduler.Location(), a.logger.With("component", "scheduler"))
		if err != nil {
			return err
		}
		jobs = usecase.NewScheduler(driver, a.pipeline, a.logger.With("component", "scheduler"))
		if err := jobs.Start(ctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
	}

	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           httpapi.NewServer(a.lookup, a.logger.With("component", "http")),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("lookup api listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if jobs != nil {
			_ = jobs.Stop(context.Background())
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("lookup api: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if jobs != nil {
		if err := jobs.Stop(shutdownCtx); err != nil {
			a.logger.Warn("scheduler stop", "error", err)
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown lookup api: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (a *Application) Close() error {
	if a.repo == nil {
		return nil
	}
	return a.repo.Close()
}
