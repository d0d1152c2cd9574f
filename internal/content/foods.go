package content

import (
	"fmt"
	"slices"

	"github.com/phrazzld/kanji-trainer/internal/domain"
	"github.com/phrazzld/kanji-trainer/internal/random"
)

type foodFile struct {
	Foods []domain.FoodItem `yaml:"foods"`
}

// Foods is the read-only food roster.
type Foods struct {
	items []domain.FoodItem
	byID  map[string]int
	rng   *random.Source
}

// NewFoods builds the food roster. It must not be empty.
func NewFoods(items []domain.FoodItem, rng *random.Source) (*Foods, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("food roster cannot be empty")
	}
	f := &Foods{items: slices.Clone(items), byID: make(map[string]int, len(items)), rng: rng}
	for i, item := range items {
		if item.ID == "" {
			return nil, fmt.Errorf("food at index %d has no id", i)
		}
		if _, dup := f.byID[item.ID]; dup {
			return nil, fmt.Errorf("duplicate food %q", item.ID)
		}
		f.byID[item.ID] = i
	}
	return f, nil
}

// All returns every food in table order.
func (f *Foods) All() []domain.FoodItem {
	return slices.Clone(f.items)
}

// Get returns the food with the given id.
func (f *Foods) Get(id string) (domain.FoodItem, bool) {
	i, ok := f.byID[id]
	if !ok {
		return domain.FoodItem{}, false
	}
	return f.items[i], true
}

// RandomFood picks a food uniformly.
func (f *Foods) RandomFood() domain.FoodItem {
	item, _ := random.Pick(f.rng, f.items)
	return item
}
