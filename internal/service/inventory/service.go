// Package inventory tracks the learner's food counts.
package inventory

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/kanji-trainer/internal/domain"
	"github.com/phrazzld/kanji-trainer/internal/platform/logger"
	"github.com/phrazzld/kanji-trainer/internal/store"
)

// Repository is the persisted inventory slot.
type Repository interface {
	Inventory(ctx context.Context) (domain.Inventory, error)
	UpdateInventory(
		ctx context.Context,
		fn func(domain.Inventory) (domain.Inventory, error),
	) (domain.Inventory, error)
}

// Manager grants and consumes food.
type Manager interface {
	// Grant adds one of foodID and returns the new count.
	Grant(ctx context.Context, foodID string) (int, error)

	// Consume removes one of foodID. It returns false, leaving the
	// inventory untouched, when none is held.
	Consume(ctx context.Context, foodID string) (bool, error)

	// State returns the current inventory.
	State(ctx context.Context) (domain.Inventory, error)
}

var _ Manager = (*manager)(nil)

type manager struct {
	repo   Repository
	logger *slog.Logger
}

// NewManager creates a Manager over the inventory slot.
func NewManager(repo Repository, logger *slog.Logger) Manager {
	if repo == nil {
		panic("repo cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &manager{repo: repo, logger: logger.With(slog.String("component", "inventory"))}
}

func (m *manager) Grant(ctx context.Context, foodID string) (int, error) {
	inv, err := m.repo.UpdateInventory(ctx, func(inv domain.Inventory) (domain.Inventory, error) {
		return inv.Granted(foodID), nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to grant food: %w", err)
	}
	logger.FromContextOrDefault(ctx, m.logger).Debug("food granted",
		slog.String("food_id", foodID),
		slog.Int("count", inv.Count(foodID)))
	return inv.Count(foodID), nil
}

func (m *manager) Consume(ctx context.Context, foodID string) (bool, error) {
	var consumed bool
	_, err := m.repo.UpdateInventory(ctx, func(inv domain.Inventory) (domain.Inventory, error) {
		next, ok := inv.Consumed(foodID)
		if !ok {
			return inv, store.ErrNoChange
		}
		consumed = true
		return next, nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to consume food: %w", err)
	}
	return consumed, nil
}

func (m *manager) State(ctx context.Context) (domain.Inventory, error) {
	inv, err := m.repo.Inventory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}
	return inv, nil
}
