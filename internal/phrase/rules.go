// Package phrase holds the text rules applied to every phrase candidate:
// normalization, boilerplate filtering, and academic scoring.
package phrase

import "strings"

// Rules is the static word-list configuration shared by Filter and Classifier.
type Rules struct {
	// Boilerplate markers reject a phrase when contained case-insensitively.
	Boilerplate []string
	// FunctionalWords must appear as a whole word for a phrase to be accepted.
	FunctionalWords []string
	// AcademicWords add to the academic score once each.
	AcademicWords []string
	// Connectives add to the academic score once each.
	Connectives []string
}

// DefaultRules returns the word lists tuned for the Manchester phrasebank pages.
func DefaultRules() Rules {
	return Rules{
		Boilerplate: []string{
			"contact us", "find us", "connect with",
			"copyright", "all rights", "university of manchester",
			"phrasebank", "twitter", "facebook",
		},
		FunctionalWords: []string{
			"is", "are", "was", "were", "be", "been",
			"have", "has", "had", "will", "would", "can", "could",
			"may", "might", "should",
			"this", "the", "these", "those",
			"to", "of", "in", "on", "at",
		},
		AcademicWords: []string{
			"demonstrate", "investigate", "examine", "analyze", "evaluate",
			"assess", "determine", "establish", "identify", "explore",
			"indicate", "reveal", "suggest", "propose", "argue",
			"hypothesis", "objective", "methodology", "significant", "substantial",
		},
		Connectives: []string{
			"furthermore", "moreover", "consequently", "therefore",
			"nevertheless", "notwithstanding", "thus", "hence",
		},
	}
}

// Merge replaces each list in r with the corresponding list of override when
// the override list is non-empty.
func (r Rules) Merge(override Rules) Rules {
	if len(override.Boilerplate) > 0 {
		r.Boilerplate = override.Boilerplate
	}
	if len(override.FunctionalWords) > 0 {
		r.FunctionalWords = override.FunctionalWords
	}
	if len(override.AcademicWords) > 0 {
		r.AcademicWords = override.AcademicWords
	}
	if len(override.Connectives) > 0 {
		r.Connectives = override.Connectives
	}
	return r
}

// distinctLower lower-cases and de-duplicates a word list, dropping blanks.
func distinctLower(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}
