// Package rewards manages the milestone reward pool: drawing real-world
// rewards without replacement and the administrative edits to the pool.
package rewards

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/kanji-trainer/internal/domain"
	"github.com/phrazzld/kanji-trainer/internal/platform/logger"
	"github.com/phrazzld/kanji-trainer/internal/random"
)

// Repository is the persisted reward pool slot.
type Repository interface {
	RewardPool(ctx context.Context) (domain.RewardPool, error)
	UpdateRewardPool(
		ctx context.Context,
		fn func(domain.RewardPool) (domain.RewardPool, error),
	) (domain.RewardPool, error)
}

// Manager draws rewards and edits the pool.
type Manager interface {
	// Draw picks an unused reward uniformly and marks it used. The boolean
	// is false when every reward has been used; that is not an error.
	Draw(ctx context.Context) (string, bool, error)

	// Add appends a reward. Blank and duplicate rewards are rejected with
	// domain.ErrRewardEmpty and domain.ErrRewardExists.
	Add(ctx context.Context, reward string) (domain.RewardPool, error)

	// Remove deletes a reward from the pool and from the used list.
	Remove(ctx context.Context, reward string) (domain.RewardPool, error)

	// ResetUsage makes every reward available again.
	ResetUsage(ctx context.Context) (domain.RewardPool, error)

	// State returns the current pool.
	State(ctx context.Context) (domain.RewardPool, error)
}

var _ Manager = (*manager)(nil)

type manager struct {
	repo   Repository
	rng    *random.Source
	logger *slog.Logger
}

// NewManager creates a Manager over the reward pool slot.
func NewManager(repo Repository, rng *random.Source, logger *slog.Logger) Manager {
	if repo == nil {
		panic("repo cannot be nil")
	}
	if rng == nil {
		panic("random source cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &manager{
		repo:   repo,
		rng:    rng,
		logger: logger.With(slog.String("component", "reward_pool")),
	}
}

func (m *manager) Draw(ctx context.Context) (string, bool, error) {
	log := logger.FromContextOrDefault(ctx, m.logger)

	var (
		drawn string
		ok    bool
	)
	_, err := m.repo.UpdateRewardPool(ctx, func(pool domain.RewardPool) (domain.RewardPool, error) {
		drawn, ok = random.Pick(m.rng, pool.Available())
		if !ok {
			return pool, nil
		}
		return pool.WithUsed(drawn), nil
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to draw reward: %w", err)
	}
	if !ok {
		log.Debug("reward pool exhausted")
		return "", false, nil
	}

	log.Info("reward drawn", slog.String("reward", drawn))
	return drawn, true, nil
}

func (m *manager) Add(ctx context.Context, reward string) (domain.RewardPool, error) {
	pool, err := m.repo.UpdateRewardPool(ctx, func(pool domain.RewardPool) (domain.RewardPool, error) {
		return pool.WithAdded(reward)
	})
	if err != nil {
		return domain.RewardPool{}, fmt.Errorf("failed to add reward: %w", err)
	}
	return pool, nil
}

func (m *manager) Remove(ctx context.Context, reward string) (domain.RewardPool, error) {
	pool, err := m.repo.UpdateRewardPool(ctx, func(pool domain.RewardPool) (domain.RewardPool, error) {
		return pool.WithRemoved(reward)
	})
	if err != nil {
		return domain.RewardPool{}, fmt.Errorf("failed to remove reward: %w", err)
	}
	return pool, nil
}

func (m *manager) ResetUsage(ctx context.Context) (domain.RewardPool, error) {
	pool, err := m.repo.UpdateRewardPool(ctx, func(pool domain.RewardPool) (domain.RewardPool, error) {
		return pool.WithUsageReset(), nil
	})
	if err != nil {
		return domain.RewardPool{}, fmt.Errorf("failed to reset reward usage: %w", err)
	}
	logger.FromContextOrDefault(ctx, m.logger).Info("reward usage reset",
		slog.Int("rewards", len(pool.Rewards)))
	return pool, nil
}

func (m *manager) State(ctx context.Context) (domain.RewardPool, error) {
	pool, err := m.repo.RewardPool(ctx)
	if err != nil {
		return domain.RewardPool{}, fmt.Errorf("failed to load reward pool: %w", err)
	}
	return pool, nil
}
