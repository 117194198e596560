package phrase

import (
	"math"
	"regexp"
	"strings"

	"PhrasebankScanner/internal/domain"
)

const (
	baseScore       = 5.0
	passiveBonus    = 1.5
	vocabularyBonus = 0.5
	maxScore        = 10.0
	minScore        = 0.0
)

var passiveVoice = regexp.MustCompile(`(?i)\b(?:is|are|was|were|been|being)\s+\w+ed\b`)

// Classifier scores accepted phrases for formality and usage frequency.
type Classifier struct {
	academic    []string
	connectives []string
}

// NewClassifier builds a classifier from rule lists.
func NewClassifier(rules Rules) *Classifier {
	return &Classifier{
		academic:    distinctLower(rules.AcademicWords),
		connectives: distinctLower(rules.Connectives),
	}
}

// Score returns the academic score and frequency bucket for text.
func (c *Classifier) Score(text string) (float64, domain.Frequency) {
	return c.AcademicScore(text), Frequency(text)
}

// AcademicScore is additive: passive voice, then one bonus per distinct
// academic word and connective found anywhere in the text.
func (c *Classifier) AcademicScore(text string) float64 {
	score := baseScore
	if passiveVoice.MatchString(text) {
		score += passiveBonus
	}

	lower := strings.ToLower(text)
	score += vocabularyBonus * float64(countContained(lower, c.academic))
	score += vocabularyBonus * float64(countContained(lower, c.connectives))

	score = math.Min(maxScore, math.Max(minScore, score))
	return math.Round(score*10) / 10
}

// Frequency buckets text by its whitespace-delimited word count.
func Frequency(text string) domain.Frequency {
	switch n := len(strings.Fields(text)); {
	case n <= 5:
		return domain.FrequencyVeryHigh
	case n <= 10:
		return domain.FrequencyHigh
	default:
		return domain.FrequencyMedium
	}
}

func countContained(lower string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(lower, w) {
			n++
		}
	}
	return n
}
