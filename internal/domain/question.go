package domain

import (
	"errors"
	"slices"
)

// OptionCount is the number of multiple-choice options offered per question:
// the correct answer plus two distractors.
const OptionCount = 3

// Question validation errors
var (
	ErrQuestionIDEmpty      = errors.New("question ID cannot be empty")
	ErrQuestionAnswerEmpty  = errors.New("question answer cannot be empty")
	ErrQuestionOptions      = errors.New("question must offer exactly three distinct options including the answer")
	ErrQuestionTemplateMiss = errors.New("question context template must contain a blank")
)

// Blank is the placeholder in a context template where the studied character goes.
const Blank = "___"

// Question is an immutable study item: one kanji with its reading, a
// fill-in-the-blank sentence and a pre-generated set of answer options.
type Question struct {
	ID              string   `json:"id"`
	Grade           int      `json:"grade"`
	CorrectAnswer   string   `json:"correct_answer"`
	Options         []string `json:"options"`
	ContextTemplate string   `json:"context_template"`
	Hint            string   `json:"hint,omitempty"`
}

// IsCorrect reports whether the given option is the question's answer.
func (q Question) IsCorrect(option string) bool {
	return option == q.CorrectAnswer
}

// Distractors returns the incorrect options in display order.
func (q Question) Distractors() []string {
	out := make([]string, 0, len(q.Options))
	for _, o := range q.Options {
		if o != q.CorrectAnswer {
			out = append(out, o)
		}
	}
	return out
}

// Validate checks if the Question has valid data.
func (q Question) Validate() error {
	if q.ID == "" {
		return ErrQuestionIDEmpty
	}
	if q.CorrectAnswer == "" {
		return ErrQuestionAnswerEmpty
	}
	if len(q.Options) != OptionCount || !slices.Contains(q.Options, q.CorrectAnswer) {
		return ErrQuestionOptions
	}
	seen := make(map[string]struct{}, len(q.Options))
	for _, o := range q.Options {
		if _, dup := seen[o]; dup {
			return ErrQuestionOptions
		}
		seen[o] = struct{}{}
	}
	return nil
}
