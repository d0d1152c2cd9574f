// Package settings manages which questions are active for training.
package settings

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/phrazzld/kanji-trainer/internal/domain"
	"github.com/phrazzld/kanji-trainer/internal/platform/logger"
)

// Repository is the persisted active-question slot.
type Repository interface {
	ActiveQuestionIDs(ctx context.Context) ([]string, error)
	UpdateActiveQuestionIDs(ctx context.Context, fn func([]string) ([]string, error)) ([]string, error)
}

// Bank is the question bank the settings choose from.
type Bank interface {
	Contains(id string) bool
	ByGrade(grade int) []domain.Question
	Grades() []int
}

// GradeView is one grade of the settings screen.
type GradeView struct {
	Grade     int              `json:"grade"`
	Selected  bool             `json:"selected"`
	Questions []QuestionToggle `json:"questions"`
}

// QuestionToggle is one question with its active flag.
type QuestionToggle struct {
	Question domain.Question `json:"question"`
	Active   bool            `json:"active"`
}

// Service reads and edits the active question set.
type Service interface {
	// Active returns the active question ids.
	Active(ctx context.Context) ([]string, error)

	// Set replaces the active ids. Unknown ids are rejected with
	// domain.ErrUnknownQuestion and duplicates are collapsed.
	Set(ctx context.Context, ids []string) ([]string, error)

	// ToggleQuestion activates the id if inactive and deactivates it otherwise.
	ToggleQuestion(ctx context.Context, id string) ([]string, error)

	// ToggleGrade activates every question of the grade unless all of them
	// are already active, in which case it deactivates them all.
	ToggleGrade(ctx context.Context, grade int) ([]string, error)

	// IsGradeSelected reports whether every question of the grade is active.
	IsGradeSelected(ctx context.Context, grade int) (bool, error)

	// Grades returns the settings screen data grouped by grade.
	Grades(ctx context.Context) ([]GradeView, error)
}

var _ Service = (*service)(nil)

type service struct {
	repo   Repository
	bank   Bank
	logger *slog.Logger
}

// NewService creates a settings Service.
func NewService(repo Repository, bank Bank, logger *slog.Logger) Service {
	if repo == nil {
		panic("repo cannot be nil")
	}
	if bank == nil {
		panic("bank cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &service{repo: repo, bank: bank, logger: logger.With(slog.String("component", "settings"))}
}

func (s *service) Active(ctx context.Context) ([]string, error) {
	ids, err := s.repo.ActiveQuestionIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active questions: %w", err)
	}
	return ids, nil
}

func (s *service) update(ctx context.Context, fn func([]string) ([]string, error)) ([]string, error) {
	ids, err := s.repo.UpdateActiveQuestionIDs(ctx, fn)
	if err != nil {
		return nil, fmt.Errorf("failed to update active questions: %w", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Debug("active questions updated",
		slog.Int("active", len(ids)))
	return ids, nil
}

func (s *service) Set(ctx context.Context, ids []string) ([]string, error) {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !s.bank.Contains(id) {
			return nil, fmt.Errorf("%w: %q", domain.ErrUnknownQuestion, id)
		}
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return s.update(ctx, func([]string) ([]string, error) { return out, nil })
}

func (s *service) ToggleQuestion(ctx context.Context, id string) ([]string, error) {
	if !s.bank.Contains(id) {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownQuestion, id)
	}
	return s.update(ctx, func(current []string) ([]string, error) {
		if slices.Contains(current, id) {
			return slices.DeleteFunc(slices.Clone(current), func(a string) bool { return a == id }), nil
		}
		return append(slices.Clone(current), id), nil
	})
}

func gradeIDs(questions []domain.Question) []string {
	ids := make([]string, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	return ids
}

func allActive(active, ids []string) bool {
	if len(ids) == 0 {
		return false
	}
	for _, id := range ids {
		if !slices.Contains(active, id) {
			return false
		}
	}
	return true
}

func (s *service) ToggleGrade(ctx context.Context, grade int) ([]string, error) {
	ids := gradeIDs(s.bank.ByGrade(grade))
	return s.update(ctx, func(current []string) ([]string, error) {
		if allActive(current, ids) {
			return slices.DeleteFunc(slices.Clone(current), func(a string) bool {
				return slices.Contains(ids, a)
			}), nil
		}
		out := slices.Clone(current)
		for _, id := range ids {
			if !slices.Contains(out, id) {
				out = append(out, id)
			}
		}
		return out, nil
	})
}

func (s *service) IsGradeSelected(ctx context.Context, grade int) (bool, error) {
	active, err := s.Active(ctx)
	if err != nil {
		return false, err
	}
	return allActive(active, gradeIDs(s.bank.ByGrade(grade))), nil
}

func (s *service) Grades(ctx context.Context) ([]GradeView, error) {
	active, err := s.Active(ctx)
	if err != nil {
		return nil, err
	}
	grades := s.bank.Grades()
	out := make([]GradeView, 0, len(grades))
	for _, g := range grades {
		questions := s.bank.ByGrade(g)
		view := GradeView{
			Grade:     g,
			Selected:  allActive(active, gradeIDs(questions)),
			Questions: make([]QuestionToggle, len(questions)),
		}
		for i, q := range questions {
			view.Questions[i] = QuestionToggle{Question: q, Active: slices.Contains(active, q.ID)}
		}
		out = append(out, view)
	}
	return out, nil
}
