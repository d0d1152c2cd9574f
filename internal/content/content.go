// Package content loads the read-only tables the trainer runs on (the kanji
// question bank, the character roster with its evolution lineages, foods
// and display messages) and answers queries over them.
package content

import (
	"embed"
	"fmt"

	"github.com/phrazzld/kanji-trainer/internal/random"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

// Content bundles every table loaded from the embedded data.
type Content struct {
	Bank     *Bank
	Roster   *Roster
	Foods    *Foods
	Messages *Messages
}

// Load parses the embedded tables. rng drives distractor generation and
// every random query made later.
func Load(rng *random.Source) (*Content, error) {
	if rng == nil {
		panic("random source cannot be nil")
	}

	var kanji kanjiFile
	if err := decode("data/kanji.yaml", &kanji); err != nil {
		return nil, err
	}
	bank, err := NewBank(kanji.Kanji, kanji.Distractors, rng)
	if err != nil {
		return nil, err
	}

	var chars characterFile
	if err := decode("data/characters.yaml", &chars); err != nil {
		return nil, err
	}
	roster, err := NewRoster(chars.Lineages, rng)
	if err != nil {
		return nil, err
	}

	var foods foodFile
	if err := decode("data/foods.yaml", &foods); err != nil {
		return nil, err
	}
	foodTable, err := NewFoods(foods.Foods, rng)
	if err != nil {
		return nil, err
	}
	if err := roster.checkFoods(foodTable); err != nil {
		return nil, err
	}

	var msgs messageFile
	if err := decode("data/messages.yaml", &msgs); err != nil {
		return nil, err
	}

	return &Content{
		Bank:     bank,
		Roster:   roster,
		Foods:    foodTable,
		Messages: NewMessages(msgs.Praise, msgs.Encouragement, msgs.Feeding, rng),
	}, nil
}

func decode(name string, out any) error {
	data, err := dataFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}
