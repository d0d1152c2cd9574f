package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInventory(t *testing.T) {
	t.Parallel()

	t.Run("consume on empty leaves state unchanged", func(t *testing.T) {
		t.Parallel()
		inv := Inventory{}
		got, ok := inv.Consumed("apple")
		assert.False(t, ok)
		assert.Equal(t, 0, got.Count("apple"))
		assert.Empty(t, got)
	})

	t.Run("grant then consume restores count", func(t *testing.T) {
		t.Parallel()
		inv := Inventory{"apple": 2}
		granted := inv.Granted("apple")
		assert.Equal(t, 3, granted.Count("apple"))
		assert.Equal(t, 2, inv.Count("apple"), "original must not change")

		consumed, ok := granted.Consumed("apple")
		assert.True(t, ok)
		assert.Equal(t, inv, consumed)
	})

	t.Run("grant creates entry", func(t *testing.T) {
		t.Parallel()
		var inv Inventory
		assert.Equal(t, 1, inv.Granted("fish").Count("fish"))
	})
}
