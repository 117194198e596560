// Package export writes finished corpora to files.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"PhrasebankScanner/internal/domain"
	"PhrasebankScanner/internal/ports"
)

// JSONWriter persists the corpus as an indented JSON document.
type JSONWriter struct {
	path string
}

var _ ports.CorpusSink = (*JSONWriter)(nil)

// NewJSONWriter targets path; parent directories are created on Store.
func NewJSONWriter(path string) *JSONWriter {
	return &JSONWriter{path: path}
}

type corpusDocument struct {
	Metadata     domain.Metadata                             `json:"metadata"`
	TotalPhrases int                                         `json:"totalPhrases"`
	Sections     map[string]map[string][]domain.PhraseRecord `json:"sections"`
}

// Name identifies the sink in logs.
func (w *JSONWriter) Name() string {
	return "json:" + w.path
}

// Path is the output file.
func (w *JSONWriter) Path() string {
	return w.path
}

// Store writes the corpus to a temp file beside the target, then renames it
// so readers never observe a partial document.
func (w *JSONWriter) Store(ctx context.Context, corpus *domain.Corpus) error {
	if corpus == nil {
		return fmt.Errorf("export: nil corpus")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(toDocument(corpus), "", "  ")
	if err != nil {
		return fmt.Errorf("export: encode corpus: %w", err)
	}

	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("export: create directory: %w", err)
		}
	}

	tmp := w.path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("export: write corpus: %w", err)
	}
	if err := os.Rename(tmp, w.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("export: commit corpus: %w", err)
	}
	return nil
}

func toDocument(corpus *domain.Corpus) corpusDocument {
	doc := corpusDocument{
		Metadata:     corpus.Metadata,
		TotalPhrases: corpus.TotalPhrases(),
		Sections:     make(map[string]map[string][]domain.PhraseRecord, len(corpus.Sections)),
	}
	for _, name := range corpus.SectionNames() {
		result := corpus.Sections[name]
		subsections := make(map[string][]domain.PhraseRecord, len(result.Subsections))
		for _, label := range result.Labels() {
			records := make([]domain.PhraseRecord, len(result.Subsections[label]))
			for i, rec := range result.Subsections[label] {
				if rec.Examples == nil {
					rec.Examples = []string{}
				}
				records[i] = rec
			}
			subsections[label] = records
		}
		doc.Sections[name] = subsections
	}
	return doc
}
