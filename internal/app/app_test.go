package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"PhrasebankScanner/internal/config"
)

const discussionPage = `<html><body>
<div class="entry-content">
  <h2>Being cautious in making claims</h2>
  <p>It is possible that X may explain Y.<br>Contact us for more.</p>
</div>
</body></html>`

func TestScrapeStoresCorpusInEverySink(t *testing.T) {
	t.Parallel()

	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/discussing-findings/" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, discussionPage)
	}))
	t.Cleanup(site.Close)

	jsonPath := filepath.Join(t.TempDir(), "data", "phrasebank.json")
	cfg := config.Config{
		Source: config.SourceConfig{
			Name:    "Test Phrasebank",
			BaseURL: site.URL,
			Sections: []config.SectionConfig{
				{Name: "discussion", URL: "/discussing-findings/"},
				{Name: "methods", URL: "/describing-methods/"},
			},
		},
		Fetch:    config.FetchConfig{Retries: -1},
		Output:   config.OutputConfig{JSONPath: jsonPath},
		Database: config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"},
	}

	ctx := context.Background()
	application, err := New(ctx, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	t.Cleanup(func() { _ = application.Close() })

	corpus, err := application.Scrape(ctx)
	if err != nil {
		t.Fatalf("Scrape error: %v", err)
	}
	if corpus.TotalPhrases() != 1 {
		t.Fatalf("expected 1 phrase, got %d", corpus.TotalPhrases())
	}
	if corpus.Sections["methods"].Count() != 0 {
		t.Fatalf("missing page should leave methods empty")
	}

	if _, err := os.Stat(jsonPath); err != nil {
		t.Fatalf("json export missing: %v", err)
	}

	records, err := application.Lookup().BySection(ctx, "discussion", "being_cautious_in_making_claims")
	if err != nil {
		t.Fatalf("BySection error: %v", err)
	}
	if len(records) != 1 || records[0].ID != "discussion_being_cautious_in_making_claims_1" {
		t.Fatalf("unexpected stored records: %+v", records)
	}

	info, err := application.Lookup().Info(ctx)
	if err != nil {
		t.Fatalf("Info error: %v", err)
	}
	if info.TotalPhrases != 1 || len(info.Sections) != 2 || info.Metadata.Source != "Test Phrasebank" {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestNewRejectsUnknownLayout(t *testing.T) {
	t.Parallel()

	cfg := config.Config{Source: config.SourceConfig{Layout: "nope"}}
	if _, err := New(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected unknown layout error")
	}
}

func TestServeRequiresDatabase(t *testing.T) {
	t.Parallel()

	application, err := New(context.Background(), config.Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if err := application.Serve(context.Background(), false); err == nil {
		t.Fatalf("expected serve to require a database")
	}
}
