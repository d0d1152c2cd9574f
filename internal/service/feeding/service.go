// Package feeding lets the learner feed an owned character with food from
// the inventory.
package feeding

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/phrazzld/kanji-trainer/internal/domain"
	"github.com/phrazzld/kanji-trainer/internal/events"
	"github.com/phrazzld/kanji-trainer/internal/platform/logger"
)

// Collection lists the characters that can be fed.
type Collection interface {
	UniqueByLineage(ctx context.Context) ([]domain.CollectedCharacter, error)
}

// Inventory holds the food counts.
type Inventory interface {
	Consume(ctx context.Context, foodID string) (bool, error)
	State(ctx context.Context) (domain.Inventory, error)
}

// Roster resolves character definitions.
type Roster interface {
	Get(id string) (domain.CharacterDefinition, bool)
}

// Foods resolves food items.
type Foods interface {
	Get(id string) (domain.FoodItem, bool)
	All() []domain.FoodItem
}

// Messages renders the message shown after feeding.
type Messages interface {
	Feeding(character, food string) string
}

// FoodOption is one food as offered for a character.
type FoodOption struct {
	Food     domain.FoodItem `json:"food"`
	Count    int             `json:"count"`
	Eligible bool            `json:"eligible"`
}

// Result describes a completed feeding.
type Result struct {
	Character domain.CharacterDefinition `json:"character"`
	Food      domain.FoodItem            `json:"food"`
	Message   string                     `json:"message"`
	Remaining int                        `json:"remaining"`
}

// Service feeds characters.
type Service interface {
	// Options lists every food with its count and whether characterID eats it.
	Options(ctx context.Context, characterID string) ([]FoodOption, error)

	// Feed consumes one foodID and feeds it to characterID.
	//
	// Returns:
	//   - domain.ErrCharacterNotOwned if the character is not a current owned form
	//   - domain.ErrUnknownFood if the food is not in the roster
	//   - domain.ErrFoodNotEligible if the character does not eat the food
	//   - domain.ErrOutOfFood if none of the food is held
	Feed(ctx context.Context, characterID, foodID string) (Result, error)
}

var _ Service = (*service)(nil)

type service struct {
	collection Collection
	inventory  Inventory
	roster     Roster
	foods      Foods
	messages   Messages
	emitter    events.EventEmitter
	logger     *slog.Logger
}

// NewService creates a feeding Service. A nil emitter discards events.
func NewService(
	collection Collection,
	inventory Inventory,
	roster Roster,
	foods Foods,
	messages Messages,
	emitter events.EventEmitter,
	logger *slog.Logger,
) Service {
	if collection == nil || inventory == nil {
		panic("collection and inventory cannot be nil")
	}
	if roster == nil || foods == nil || messages == nil {
		panic("content providers cannot be nil")
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		collection: collection,
		inventory:  inventory,
		roster:     roster,
		foods:      foods,
		messages:   messages,
		emitter:    emitter,
		logger:     logger.With(slog.String("component", "feeding")),
	}
}

// owned returns the definition of characterID if it is the current form of
// an owned lineage.
func (s *service) owned(ctx context.Context, characterID string) (domain.CharacterDefinition, error) {
	unique, err := s.collection.UniqueByLineage(ctx)
	if err != nil {
		return domain.CharacterDefinition{}, err
	}
	if !slices.ContainsFunc(unique, func(r domain.CollectedCharacter) bool {
		return r.CharacterID == characterID
	}) {
		return domain.CharacterDefinition{}, fmt.Errorf("%w: %q", domain.ErrCharacterNotOwned, characterID)
	}
	def, ok := s.roster.Get(characterID)
	if !ok {
		return domain.CharacterDefinition{}, fmt.Errorf("%w: %q", domain.ErrUnknownCharacter, characterID)
	}
	return def, nil
}

func (s *service) Options(ctx context.Context, characterID string) ([]FoodOption, error) {
	def, err := s.owned(ctx, characterID)
	if err != nil {
		return nil, err
	}
	inv, err := s.inventory.State(ctx)
	if err != nil {
		return nil, err
	}

	foods := s.foods.All()
	out := make([]FoodOption, len(foods))
	for i, f := range foods {
		out[i] = FoodOption{Food: f, Count: inv.Count(f.ID), Eligible: def.CanEat(f.ID)}
	}
	return out, nil
}

func (s *service) Feed(ctx context.Context, characterID, foodID string) (Result, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	def, err := s.owned(ctx, characterID)
	if err != nil {
		return Result{}, err
	}
	food, ok := s.foods.Get(foodID)
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", domain.ErrUnknownFood, foodID)
	}
	if !def.CanEat(foodID) {
		return Result{}, fmt.Errorf("%w: %s cannot eat %s", domain.ErrFoodNotEligible, def.ID, foodID)
	}

	consumed, err := s.inventory.Consume(ctx, foodID)
	if err != nil {
		return Result{}, err
	}
	if !consumed {
		return Result{}, fmt.Errorf("%w: %q", domain.ErrOutOfFood, foodID)
	}
	inv, err := s.inventory.State(ctx)
	if err != nil {
		return Result{}, err
	}

	log.Info("character fed",
		slog.String("character_id", def.ID),
		slog.String("food_id", foodID))
	if evt, err := events.NewEvent(events.TypeFoodConsumed, map[string]string{
		"character_id": def.ID,
		"food_id":      foodID,
	}, time.Now().UTC()); err == nil {
		if err := s.emitter.EmitEvent(ctx, evt); err != nil {
			log.Warn("failed to emit event", slog.String("error", err.Error()))
		}
	}
	return Result{
		Character: def,
		Food:      food,
		Message:   s.messages.Feeding(def.Name, food.Name),
		Remaining: inv.Count(foodID),
	}, nil
}
