package domain

import (
	"errors"
	"time"
)

// Collected character validation errors
var (
	ErrCollectedIDEmpty      = errors.New("collected character ID cannot be empty")
	ErrNegativeTrainingCount = errors.New("training count cannot be negative")
	ErrCollectedAtMissing    = errors.New("collected at timestamp cannot be zero")
)

// CollectedCharacter is the learner's record of one owned lineage. The
// CharacterID always names the current form; evolution replaces it.
type CollectedCharacter struct {
	CharacterID    string         `json:"characterId"`
	CollectedAt    time.Time      `json:"collectedAt"`
	EvolutionLevel EvolutionStage `json:"evolutionLevel"`
	TrainingCount  int            `json:"trainingCount"`
}

// NewCollectedCharacter creates a fresh record for an acquired initial form.
func NewCollectedCharacter(characterID string, now time.Time) CollectedCharacter {
	return CollectedCharacter{
		CharacterID:    characterID,
		CollectedAt:    now.UTC(),
		EvolutionLevel: StageInitial,
		TrainingCount:  0,
	}
}

// Validate checks if the record has valid data.
func (c CollectedCharacter) Validate() error {
	if c.CharacterID == "" {
		return ErrCollectedIDEmpty
	}
	if c.CollectedAt.IsZero() {
		return ErrCollectedAtMissing
	}
	if !c.EvolutionLevel.Valid() {
		return ErrInvalidStage
	}
	if c.TrainingCount < 0 {
		return ErrNegativeTrainingCount
	}
	return nil
}
