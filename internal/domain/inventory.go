package domain

import "maps"

// Inventory maps food ids to how many of each the learner holds.
// Counts are never negative and absent keys mean zero.
type Inventory map[string]int

// Count returns the number held of foodID.
func (inv Inventory) Count(foodID string) int {
	return inv[foodID]
}

// Granted returns a copy of the inventory with one more of foodID.
func (inv Inventory) Granted(foodID string) Inventory {
	out := inv.clone()
	out[foodID]++
	return out
}

// Consumed returns a copy of the inventory with one fewer of foodID,
// clamped at zero. The boolean reports whether anything was held.
func (inv Inventory) Consumed(foodID string) (Inventory, bool) {
	if inv[foodID] <= 0 {
		return inv.clone(), false
	}
	out := inv.clone()
	out[foodID]--
	return out, true
}

func (inv Inventory) clone() Inventory {
	out := make(Inventory, len(inv)+1)
	maps.Copy(out, inv)
	return out
}
