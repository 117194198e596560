package parser

import (
	"PhrasebankScanner/internal/domain"
	"PhrasebankScanner/internal/phrase"
)

// Subsection tracks the label of the most recent heading. It is a value:
// Observe returns the next state and never mutates the receiver, so one
// walk's state cannot bleed into another.
type Subsection struct {
	label string
}

// NewSubsection starts at the default "general" label.
func NewSubsection() Subsection {
	return Subsection{label: domain.DefaultSubsection}
}

// Label returns the current subsection label.
func (s Subsection) Label() string {
	if s.label == "" {
		return domain.DefaultSubsection
	}
	return s.label
}

// Observe feeds one traversed node. Only headings whose text yields a label
// move the state forward.
func (s Subsection) Observe(kind NodeKind, text string) Subsection {
	if kind != KindHeading {
		return s
	}
	label, ok := phrase.Label(text)
	if !ok {
		return s
	}
	return Subsection{label: label}
}
