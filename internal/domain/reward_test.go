package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewardPool(t *testing.T) {
	t.Parallel()

	t.Run("available excludes used in pool order", func(t *testing.T) {
		t.Parallel()
		p := RewardPool{Rewards: []string{"a", "b", "c"}, UsedRewards: []string{"b"}}
		assert.Equal(t, []string{"a", "c"}, p.Available())
		assert.True(t, p.IsUsed("b"))
	})

	t.Run("add trims and rejects duplicates", func(t *testing.T) {
		t.Parallel()
		p := NewRewardPool([]string{"a"})

		p, err := p.WithAdded("  b  ")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, p.Rewards)

		_, err = p.WithAdded("b")
		assert.ErrorIs(t, err, ErrRewardExists)

		_, err = p.WithAdded("   ")
		assert.ErrorIs(t, err, ErrRewardEmpty)
	})

	t.Run("remove drops from both lists", func(t *testing.T) {
		t.Parallel()
		p := RewardPool{Rewards: []string{"a", "b"}, UsedRewards: []string{"b"}}

		got, err := p.WithRemoved("b")
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, got.Rewards)
		assert.Empty(t, got.UsedRewards)
		assert.Equal(t, []string{"a", "b"}, p.Rewards, "original must not change")

		_, err = p.WithRemoved("z")
		assert.ErrorIs(t, err, ErrRewardNotFound)
	})

	t.Run("used and reset", func(t *testing.T) {
		t.Parallel()
		p := NewRewardPool([]string{"a", "b"})
		p = p.WithUsed("a").WithUsed("a").WithUsed("missing")
		assert.Equal(t, []string{"a"}, p.UsedRewards)

		p = p.WithUsageReset()
		assert.Empty(t, p.UsedRewards)
		assert.Equal(t, []string{"a", "b"}, p.Available())
	})
}
