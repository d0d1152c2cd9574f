package domain

import (
	"errors"
	"slices"
)

// EvolutionStage is the position of a character form within its lineage.
type EvolutionStage int

// Evolution stages of a three-form lineage.
const (
	StageInitial EvolutionStage = 0
	StageSecond  EvolutionStage = 1
	StageFinal   EvolutionStage = 2
)

// Valid reports whether the stage is one of the three lineage positions.
func (s EvolutionStage) Valid() bool {
	return s >= StageInitial && s <= StageFinal
}

// Character definition validation errors
var (
	ErrCharacterIDEmpty      = errors.New("character ID cannot be empty")
	ErrCharacterLineageEmpty = errors.New("character lineage ID cannot be empty")
	ErrInvalidStage          = errors.New("evolution stage must be 0, 1 or 2")
	ErrInvalidEvolutionLink  = errors.New("evolution links do not match the stage")
)

// CharacterProfile is flavour text shown on a character's detail card.
type CharacterProfile struct {
	Hobbies      string `json:"hobbies,omitempty" yaml:"hobbies"`
	Dislikes     string `json:"dislikes,omitempty" yaml:"dislikes"`
	SpecialSkill string `json:"special_skill,omitempty" yaml:"special_skill"`
}

// CharacterDefinition is a read-only roster entry. Definitions sharing a
// LineageID form a linear chain from StageInitial to StageFinal.
type CharacterDefinition struct {
	ID              string           `json:"id"`
	LineageID       string           `json:"lineage_id"`
	Name            string           `json:"name"`
	Emoji           string           `json:"emoji"`
	Description     string           `json:"description"`
	Stage           EvolutionStage   `json:"evolution_stage"`
	NextEvolutionID string           `json:"next_evolution_id,omitempty"`
	PrevEvolutionID string           `json:"prev_evolution_id,omitempty"`
	EligibleFoodIDs []string         `json:"eligible_food_ids"`
	Profile         CharacterProfile `json:"profile"`
}

// IsInitial reports whether this is the first form of its lineage.
func (d CharacterDefinition) IsInitial() bool {
	return d.Stage == StageInitial
}

// IsTerminal reports whether the form has no further evolution.
func (d CharacterDefinition) IsTerminal() bool {
	return d.NextEvolutionID == ""
}

// CanEat reports whether the food id is one of the definition's eligible foods.
func (d CharacterDefinition) CanEat(foodID string) bool {
	return slices.Contains(d.EligibleFoodIDs, foodID)
}

// Validate checks the definition's own fields and the consistency of its
// evolution links with its stage. Shorter lineages may end before the final
// stage.
func (d CharacterDefinition) Validate() error {
	if d.ID == "" {
		return ErrCharacterIDEmpty
	}
	if d.LineageID == "" {
		return ErrCharacterLineageEmpty
	}
	if !d.Stage.Valid() {
		return ErrInvalidStage
	}
	if (d.Stage == StageInitial) != (d.PrevEvolutionID == "") {
		return ErrInvalidEvolutionLink
	}
	if d.Stage == StageFinal && d.NextEvolutionID != "" {
		return ErrInvalidEvolutionLink
	}
	return nil
}
