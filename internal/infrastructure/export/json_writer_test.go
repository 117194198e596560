package export

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PhrasebankScanner/internal/domain"
)

func TestJSONWriterStore(t *testing.T) {
	t.Parallel()

	corpus := domain.NewCorpus(domain.Metadata{
		Source:    "Manchester Academic Phrasebank",
		URL:       "https://www.phrasebank.manchester.ac.uk",
		ScrapedAt: time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC),
		Version:   domain.SchemaVersion,
		RunID:     "run-1",
	})
	doc := domain.NewDocumentResult()
	doc.Append(domain.PhraseRecord{
		ID: "discussion_general_1", Text: "This may be due to the small sample.",
		AcademicScore: 5, Frequency: domain.FrequencyHigh, Section: "discussion", Subsection: "general",
	})
	corpus.Put("discussion", doc)
	corpus.Put("methods", domain.NewDocumentResult())

	path := filepath.Join(t.TempDir(), "nested", "out", "phrasebank.json")
	writer := NewJSONWriter(path)
	require.NoError(t, writer.Store(context.Background(), corpus))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  \"metadata\"", "two-space indent")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.EqualValues(t, 1, decoded["totalPhrases"])

	meta := decoded["metadata"].(map[string]any)
	assert.Equal(t, "2.0", meta["version"])
	assert.Equal(t, "2025-03-01T10:00:00Z", meta["scrapedAt"])

	sections := decoded["sections"].(map[string]any)
	assert.Equal(t, map[string]any{}, sections["methods"])
	records := sections["discussion"].(map[string]any)["general"].([]any)
	require.Len(t, records, 1)
	record := records[0].(map[string]any)
	assert.Equal(t, "This may be due to the small sample.", record["text"])
	assert.Equal(t, []any{}, record["examples"])
	assert.Equal(t, "high", record["frequency"])

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file removed after rename")
}

func TestJSONWriterRejectsNilCorpus(t *testing.T) {
	t.Parallel()

	writer := NewJSONWriter(filepath.Join(t.TempDir(), "out.json"))
	require.Error(t, writer.Store(context.Background(), nil))
}
