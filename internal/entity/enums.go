// Package entity defines the howdju domain: propositions, statements,
// justifications and their bases, plus the drafts editors work on.
package entity

import "fmt"

// ExhaustedEnumError is raised when a discriminant has no known variant.
// It signals schema drift between client and server and is never defaulted.
type ExhaustedEnumError struct {
	Enum  string
	Value any
}

func (e *ExhaustedEnumError) Error() string {
	return fmt.Sprintf("exhausted enum %s: unhandled value %v", e.Enum, e.Value)
}

// --- Polarity ---

type Polarity string

const (
	Positive Polarity = "POSITIVE"
	Negative Polarity = "NEGATIVE"
)

// Invert flips the polarity. Panics on an unknown value.
func (p Polarity) Invert() Polarity {
	switch p {
	case Positive:
		return Negative
	case Negative:
		return Positive
	default:
		panic(&ExhaustedEnumError{Enum: "Polarity", Value: p})
	}
}

// --- Justification Target ---

type TargetType string

const (
	TargetProposition   TargetType = "PROPOSITION"
	TargetStatement     TargetType = "STATEMENT"
	TargetJustification TargetType = "JUSTIFICATION"
)

// --- Justification Basis ---

type BasisType string

const (
	BasisPropositionCompound BasisType = "PROPOSITION_COMPOUND"
	BasisWritQuote           BasisType = "WRIT_QUOTE"
)

// --- Statement Sentence ---

type SentenceType string

const (
	SentenceProposition SentenceType = "PROPOSITION"
	SentenceStatement   SentenceType = "STATEMENT"
)
