package training

import (
	"context"
	"log/slog"

	"github.com/phrazzld/kanji-trainer/internal/domain"
	"github.com/phrazzld/kanji-trainer/internal/domain/progression"
	"github.com/phrazzld/kanji-trainer/internal/events"
	"github.com/phrazzld/kanji-trainer/internal/schedule"
	"github.com/phrazzld/kanji-trainer/internal/service/collection"
)

// QuestionSelector draws the question queue.
type QuestionSelector interface {
	SelectQuestions(activeIDs []string, count int) []domain.Question
}

// ActiveQuestions supplies the learner's active question ids.
type ActiveQuestions interface {
	Active(ctx context.Context) ([]string, error)
}

// Ledger is the collection the machine reads and rewards into.
type Ledger interface {
	Records(ctx context.Context) ([]domain.CollectedCharacter, error)
	UniqueByLineage(ctx context.Context) ([]domain.CollectedCharacter, error)
	Acquire(ctx context.Context, characterID string) (domain.CollectedCharacter, error)
	Evolve(ctx context.Context, characterID string) (collection.Evolution, error)
}

// Roster picks the character offered by a get-new session.
type Roster interface {
	RandomUnownedLineageMember(ownedIDs []string) (domain.CharacterDefinition, bool)
}

// Foods picks the food granted at resolution.
type Foods interface {
	RandomFood() domain.FoodItem
}

// Inventory receives granted food.
type Inventory interface {
	Grant(ctx context.Context, foodID string) (int, error)
}

// Rewards draws milestone rewards.
type Rewards interface {
	Draw(ctx context.Context) (string, bool, error)
}

// History records every answer.
type History interface {
	Append(ctx context.Context, questionID string, correct bool) (domain.HistoryEntry, error)
}

// Messages supplies the texts shown after answers.
type Messages interface {
	Praise() string
	Encouragement() string
}

// Batcher runs several store updates as one step.
type Batcher interface {
	Batch(ctx context.Context, fn func(ctx context.Context) error) error
}

// Deps are the collaborators of the Machine. Emitter and Logger may be nil.
type Deps struct {
	Questions   QuestionSelector
	Active      ActiveQuestions
	Ledger      Ledger
	Roster      Roster
	Foods       Foods
	Inventory   Inventory
	Rewards     Rewards
	History     History
	Messages    Messages
	Store       Batcher
	Progression progression.Service
	Scheduler   schedule.Scheduler
	Emitter     events.EventEmitter
	Logger      *slog.Logger
}

func (d Deps) check() {
	switch {
	case d.Questions == nil:
		panic("question selector cannot be nil")
	case d.Active == nil:
		panic("active questions cannot be nil")
	case d.Ledger == nil:
		panic("ledger cannot be nil")
	case d.Roster == nil:
		panic("roster cannot be nil")
	case d.Foods == nil:
		panic("foods cannot be nil")
	case d.Inventory == nil:
		panic("inventory cannot be nil")
	case d.Rewards == nil:
		panic("rewards cannot be nil")
	case d.History == nil:
		panic("history cannot be nil")
	case d.Messages == nil:
		panic("messages cannot be nil")
	case d.Store == nil:
		panic("store cannot be nil")
	case d.Progression == nil:
		panic("progression service cannot be nil")
	case d.Scheduler == nil:
		panic("scheduler cannot be nil")
	}
}
