package domain

import (
	"errors"
	"fmt"
	"time"
)

// MaxHistoryEntries caps the answer history; older entries are dropped.
const MaxHistoryEntries = 500

// Outcome is the result of a single answered question.
type Outcome string

// Answer outcomes.
const (
	OutcomeCorrect   Outcome = "correct"
	OutcomeIncorrect Outcome = "incorrect"
)

// ErrInvalidOutcome is returned when an outcome is neither correct nor incorrect.
var ErrInvalidOutcome = errors.New("invalid outcome")

// Valid reports whether the outcome is a known value.
func (o Outcome) Valid() bool {
	return o == OutcomeCorrect || o == OutcomeIncorrect
}

// OutcomeOf maps a boolean answer result to an Outcome.
func OutcomeOf(correct bool) Outcome {
	if correct {
		return OutcomeCorrect
	}
	return OutcomeIncorrect
}

// HistoryEntry records one answered question. Date is a month/day display
// string without zero padding, for example "3/7".
type HistoryEntry struct {
	Date       string  `json:"date"`
	QuestionID string  `json:"questionId"`
	Outcome    Outcome `json:"outcome"`
}

// FormatHistoryDate renders t in the history date format.
func FormatHistoryDate(t time.Time) string {
	return fmt.Sprintf("%d/%d", int(t.Month()), t.Day())
}

// NewHistoryEntry builds an entry for an answer given at t.
func NewHistoryEntry(questionID string, correct bool, t time.Time) HistoryEntry {
	return HistoryEntry{
		Date:       FormatHistoryDate(t),
		QuestionID: questionID,
		Outcome:    OutcomeOf(correct),
	}
}

// PrependHistory returns a new slice with entry first, followed by the
// existing entries, truncated to MaxHistoryEntries.
func PrependHistory(history []HistoryEntry, entry HistoryEntry) []HistoryEntry {
	n := len(history) + 1
	if n > MaxHistoryEntries {
		n = MaxHistoryEntries
	}
	out := make([]HistoryEntry, 0, n)
	out = append(out, entry)
	return append(out, history[:n-1]...)
}
