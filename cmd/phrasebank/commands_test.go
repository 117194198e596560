package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PhrasebankScanner/internal/domain"
	"PhrasebankScanner/internal/infrastructure/storage"
)

func seedStore(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	dsn := "file:" + filepath.Join(dir, "phrasebank.db")

	repo, err := storage.Open(context.Background(), storage.DriverSQLite, dsn)
	require.NoError(t, err)
	defer repo.Close()

	corpus := domain.NewCorpus(domain.Metadata{RunID: "run-1", Version: domain.SchemaVersion})
	doc := domain.NewDocumentResult()
	doc.Append(domain.PhraseRecord{
		ID: "discussion_general_1", Text: "These findings suggest that the effect is robust.",
		AcademicScore: 5.5, Frequency: domain.FrequencyHigh, Section: "discussion", Subsection: "general",
	})
	doc.Append(domain.PhraseRecord{
		ID: "discussion_general_2", Text: "The results are consistent with earlier work on the topic.",
		AcademicScore: 5.0, Frequency: domain.FrequencyMedium, Section: "discussion", Subsection: "general",
	})
	corpus.Put("discussion", doc)
	require.NoError(t, repo.ReplaceCorpus(context.Background(), corpus))

	configPath := filepath.Join(dir, "phrasebank.yaml")
	body := "database:\n  driver: sqlite\n  dsn: " + dsn + "\noutput:\n  jsonPath: " + filepath.Join(dir, "out.json") + "\nlogging:\n  level: error\n"
	require.NoError(t, os.WriteFile(configPath, []byte(body), 0o600))
	return configPath
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"scrape", "serve", "search"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"search"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_PrintsJSON(t *testing.T) {
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("DATABASE_DRIVER", "")
	configPath := seedStore(t)

	buf := new(bytes.Buffer)
	root := newRootCmd()
	root.SetOut(buf)
	root.SetArgs([]string{"--config", configPath, "search", "suggest", "--json"})
	require.NoError(t, root.Execute())

	var records []domain.PhraseRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "discussion_general_1", records[0].ID)
}

func TestSearchCmd_Frequent(t *testing.T) {
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("DATABASE_DRIVER", "")
	configPath := seedStore(t)

	buf := new(bytes.Buffer)
	root := newRootCmd()
	root.SetOut(buf)
	root.SetArgs([]string{"--config", configPath, "search", "discussion", "--frequent"})
	require.NoError(t, root.Execute())

	out := buf.String()
	assert.Contains(t, out, "These findings suggest")
	assert.NotContains(t, out, "consistent with earlier work")
}
