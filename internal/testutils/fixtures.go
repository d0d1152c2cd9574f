package testutils

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/phrazzld/kanji-trainer/internal/content"
	"github.com/phrazzld/kanji-trainer/internal/domain"
	"github.com/phrazzld/kanji-trainer/internal/random"
	"github.com/phrazzld/kanji-trainer/internal/store"
	"github.com/stretchr/testify/require"
)

// Fixture lineage and food ids.
const (
	LineageFox = "fox"
	LineageOwl = "owl"
	LineageEgg = "egg"

	FoodApple = "apple"
	FoodFish  = "fish"
	FoodSeed  = "seed"
)

// TestSeed is the random seed used by the fixtures.
const TestSeed int64 = 42

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// FixedClock reports a constant time.
type FixedClock struct {
	T time.Time
}

// Now implements the clock interfaces used by the services.
func (c FixedClock) Now() time.Time { return c.T }

// DefaultTime is the time FixedClock fixtures report: the 7th of March.
var DefaultTime = time.Date(2026, time.March, 7, 9, 30, 0, 0, time.UTC)

// NewMemorySlots returns slots over a fresh in-memory backend.
func NewMemorySlots(t *testing.T, defaults store.Defaults) *store.Slots {
	t.Helper()
	s := store.NewSlots(store.NewMemoryBackend(), defaults, DiscardLogger())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// LineageEntries returns a three-lineage roster table: fox has three forms,
// owl two and egg one.
func LineageEntries() []content.LineageEntry {
	return []content.LineageEntry{
		{
			ID:           LineageFox,
			FavoriteFood: []string{FoodApple, FoodFish},
			Forms: []content.FormEntry{
				{Name: "Kit", Emoji: "🦊"},
				{Name: "Fox", Emoji: "🦊"},
				{Name: "Ninetails", Emoji: "🦊"},
			},
		},
		{
			ID:           LineageOwl,
			FavoriteFood: []string{FoodSeed},
			Forms: []content.FormEntry{
				{Name: "Owlet", Emoji: "🐣"},
				{Name: "Owl", Emoji: "🦉"},
			},
		},
		{
			ID:           LineageEgg,
			FavoriteFood: []string{FoodSeed},
			Forms:        []content.FormEntry{{Name: "Egg", Emoji: "🥚"}},
		},
	}
}

// FoodItems returns the fixture food roster.
func FoodItems() []domain.FoodItem {
	return []domain.FoodItem{
		{ID: FoodApple, Name: "Apple", Emoji: "🍎"},
		{ID: FoodFish, Name: "Fish", Emoji: "🐟"},
		{ID: FoodSeed, Name: "Seed", Emoji: "🌰"},
	}
}

// KanjiEntries returns a small grade 1 and grade 2 question table.
func KanjiEntries() []content.KanjiEntry {
	return []content.KanjiEntry{
		{Char: "一", Grade: 1, Reading: "いち", Sentence: "___ばんめ"},
		{Char: "二", Grade: 1, Reading: "に", Sentence: "___かい"},
		{Char: "山", Grade: 1, Reading: "やま", Sentence: "___にのぼる", Hint: "mountain"},
		{Char: "海", Grade: 2, Reading: "うみ", Sentence: "___でおよぐ"},
	}
}

// Distractors returns the fixture distractor readings.
func Distractors() []string {
	return []string{"いち", "に", "やま", "うみ", "かわ", "そら"}
}

// NewTestContent builds fixture content over a seeded source.
func NewTestContent(t *testing.T) *content.Content {
	t.Helper()
	rng := random.MustNew(TestSeed)

	bank, err := content.NewBank(KanjiEntries(), Distractors(), rng)
	require.NoError(t, err)
	roster, err := content.NewRoster(LineageEntries(), rng)
	require.NoError(t, err)
	foods, err := content.NewFoods(FoodItems(), rng)
	require.NoError(t, err)

	return &content.Content{
		Bank:   bank,
		Roster: roster,
		Foods:  foods,
		Messages: content.NewMessages(
			[]string{"Great!"},
			[]string{"Keep going!"},
			[]string{"{character} loved the {food}!"},
			rng,
		),
	}
}
