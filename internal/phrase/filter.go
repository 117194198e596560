package phrase

import (
	"regexp"
	"strings"
)

// MinLength is the shortest accepted phrase, in characters.
const MinLength = 10

// Verdict names the rule that decided a phrase.
type Verdict string

const (
	Accepted               Verdict = "accepted"
	RejectedTooShort       Verdict = "too_short"
	RejectedBoilerplate    Verdict = "boilerplate"
	RejectedNoFunctionWord Verdict = "no_functional_word"
)

// Filter decides whether normalized text is a phrase candidate.
type Filter struct {
	boilerplate []string
	functional  *regexp.Regexp
}

// NewFilter compiles the filter from rule lists. An empty functional word
// list disables the grammaticality check.
func NewFilter(rules Rules) *Filter {
	f := &Filter{boilerplate: distinctLower(rules.Boilerplate)}
	if words := distinctLower(rules.FunctionalWords); len(words) > 0 {
		f.functional = wordSetPattern(words)
	}
	return f
}

// Accept reports whether text passes every rule.
func (f *Filter) Accept(text string) bool {
	return f.Verdict(text) == Accepted
}

// Verdict evaluates the rules in order and returns the first one that rejects.
func (f *Filter) Verdict(text string) Verdict {
	if text == "" || Length(text) < MinLength {
		return RejectedTooShort
	}

	lower := strings.ToLower(text)
	for _, marker := range f.boilerplate {
		if strings.Contains(lower, marker) {
			return RejectedBoilerplate
		}
	}

	if f.functional != nil && !f.functional.MatchString(lower) {
		return RejectedNoFunctionWord
	}

	return Accepted
}

func wordSetPattern(words []string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
}
