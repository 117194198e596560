package domain

import "testing"

func TestDocumentResultKeepsFirstSeenOrder(t *testing.T) {
	t.Parallel()

	doc := NewDocumentResult()
	doc.Append(PhraseRecord{ID: "a", Subsection: "general"})
	doc.Append(PhraseRecord{ID: "b", Subsection: "zeta"})
	doc.Append(PhraseRecord{ID: "c", Subsection: "alpha"})
	doc.Append(PhraseRecord{ID: "d", Subsection: "zeta"})

	labels := doc.Labels()
	want := []string{"general", "zeta", "alpha"}
	if len(labels) != len(want) {
		t.Fatalf("expected %d labels, got %v", len(want), labels)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("label %d: expected %s, got %s", i, want[i], labels[i])
		}
	}

	if doc.Count() != 4 {
		t.Fatalf("expected 4 records, got %d", doc.Count())
	}

	ids := ""
	for _, rec := range doc.Records() {
		ids += rec.ID
	}
	if ids != "abdc" {
		t.Fatalf("unexpected flatten order: %s", ids)
	}
}

func TestCorpusTotalMatchesSubsectionLengths(t *testing.T) {
	t.Parallel()

	corpus := NewCorpus(Metadata{Source: "test"})

	intro := NewDocumentResult()
	intro.Append(PhraseRecord{ID: "1", Subsection: "general"})
	intro.Append(PhraseRecord{ID: "2", Subsection: "aims"})
	corpus.Put("introduction", intro)
	corpus.Put("methods", NewDocumentResult())

	results := NewDocumentResult()
	for i := 0; i < 3; i++ {
		results.Append(PhraseRecord{Subsection: "general"})
	}
	corpus.Put("results", results)

	sum := 0
	for _, doc := range corpus.Sections {
		for _, records := range doc.Subsections {
			sum += len(records)
		}
	}
	if corpus.TotalPhrases() != sum || sum != 5 {
		t.Fatalf("total %d does not match sum %d", corpus.TotalPhrases(), sum)
	}

	names := corpus.SectionNames()
	if len(names) != 3 || names[0] != "introduction" || names[2] != "results" {
		t.Fatalf("unexpected section order: %v", names)
	}
}

func TestCorpusPutReplacesSection(t *testing.T) {
	t.Parallel()

	corpus := NewCorpus(Metadata{})
	first := NewDocumentResult()
	first.Append(PhraseRecord{Subsection: "general"})
	corpus.Put("methods", first)
	corpus.Put("methods", NewDocumentResult())

	if corpus.TotalPhrases() != 0 {
		t.Fatalf("expected replaced section to be empty, got %d", corpus.TotalPhrases())
	}
	if len(corpus.SectionNames()) != 1 {
		t.Fatalf("expected one section, got %v", corpus.SectionNames())
	}
}

func TestFrequencyValid(t *testing.T) {
	t.Parallel()

	for _, f := range []Frequency{FrequencyVeryHigh, FrequencyHigh, FrequencyMedium} {
		if !f.Valid() {
			t.Fatalf("expected %s to be valid", f)
		}
	}
	if Frequency("low").Valid() {
		t.Fatalf("unexpected valid bucket low")
	}
}
