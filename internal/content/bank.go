package content

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/phrazzld/kanji-trainer/internal/domain"
	"github.com/phrazzld/kanji-trainer/internal/random"
)

// ErrTooFewDistractors is returned when the distractor pool cannot supply
// two readings different from some answer.
var ErrTooFewDistractors = errors.New("distractor pool too small")

// KanjiEntry is one row of the kanji table.
type KanjiEntry struct {
	Char     string `yaml:"char"`
	Grade    int    `yaml:"grade"`
	Reading  string `yaml:"reading"`
	Sentence string `yaml:"sentence"`
	Hint     string `yaml:"hint"`
}

type kanjiFile struct {
	Distractors []string     `yaml:"distractors"`
	Kanji       []KanjiEntry `yaml:"kanji"`
}

// Bank is the question bank. Options are generated once when the bank is
// built, so an item offers the same choices for the lifetime of the bank.
type Bank struct {
	questions []domain.Question
	byID      map[string]int
	rng       *random.Source
}

// NewBank builds questions from entries, drawing two distractors per entry
// from pool without replacement and excluding the entry's own reading.
func NewBank(entries []KanjiEntry, pool []string, rng *random.Source) (*Bank, error) {
	b := &Bank{
		questions: make([]domain.Question, 0, len(entries)),
		byID:      make(map[string]int, len(entries)),
		rng:       rng,
	}
	for _, e := range entries {
		if _, dup := b.byID[e.Char]; dup {
			return nil, fmt.Errorf("duplicate kanji %q", e.Char)
		}
		candidates := slices.DeleteFunc(slices.Clone(pool), func(d string) bool { return d == e.Reading })
		if len(candidates) < domain.OptionCount-1 {
			return nil, fmt.Errorf("%w: %q", ErrTooFewDistractors, e.Char)
		}
		distractors := random.Shuffled(rng, candidates)[:domain.OptionCount-1]
		options := random.Shuffled(rng, append([]string{e.Reading}, distractors...))

		q := domain.Question{
			ID:              e.Char,
			Grade:           e.Grade,
			CorrectAnswer:   e.Reading,
			Options:         options,
			ContextTemplate: e.Sentence,
			Hint:            e.Hint,
		}
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("invalid kanji %q: %w", e.Char, err)
		}
		b.byID[q.ID] = len(b.questions)
		b.questions = append(b.questions, q)
	}
	return b, nil
}

// All returns every question in table order.
func (b *Bank) All() []domain.Question {
	return slices.Clone(b.questions)
}

// IDs returns every question id in table order.
func (b *Bank) IDs() []string {
	ids := make([]string, len(b.questions))
	for i, q := range b.questions {
		ids[i] = q.ID
	}
	return ids
}

// Get returns the question with the given id.
func (b *Bank) Get(id string) (domain.Question, bool) {
	i, ok := b.byID[id]
	if !ok {
		return domain.Question{}, false
	}
	return b.questions[i], true
}

// Contains reports whether id is a known question.
func (b *Bank) Contains(id string) bool {
	_, ok := b.byID[id]
	return ok
}

// ByGrade returns the questions of one school grade in table order.
func (b *Bank) ByGrade(grade int) []domain.Question {
	var out []domain.Question
	for _, q := range b.questions {
		if q.Grade == grade {
			out = append(out, q)
		}
	}
	return out
}

// Grades returns the grades present in the bank, ascending.
func (b *Bank) Grades() []int {
	seen := map[int]struct{}{}
	for _, q := range b.questions {
		seen[q.Grade] = struct{}{}
	}
	grades := make([]int, 0, len(seen))
	for g := range seen {
		grades = append(grades, g)
	}
	sort.Ints(grades)
	return grades
}

// SelectQuestions returns exactly count questions drawn from the active
// ids, or none when no active id is in the bank. When there are fewer
// active questions than count, successive shuffles of the active set are
// concatenated and the result truncated, so items repeat.
func (b *Bank) SelectQuestions(activeIDs []string, count int) []domain.Question {
	active := make(map[string]struct{}, len(activeIDs))
	for _, id := range activeIDs {
		active[id] = struct{}{}
	}

	var available []domain.Question
	for _, q := range b.questions {
		if _, ok := active[q.ID]; ok {
			available = append(available, q)
		}
	}
	if len(available) == 0 || count <= 0 {
		return []domain.Question{}
	}

	out := make([]domain.Question, 0, count+len(available))
	for len(out) < count {
		out = append(out, random.Shuffled(b.rng, available)...)
	}
	return out[:count]
}
