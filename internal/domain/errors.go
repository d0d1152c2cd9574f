package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrUnknownCharacter is returned when a character id is not part of the roster.
	ErrUnknownCharacter = errors.New("unknown character")

	// ErrCharacterNotOwned is returned when no collected record holds the character id.
	ErrCharacterNotOwned = errors.New("character not owned")

	// ErrLineageOwned is returned when acquiring a member of a lineage that is already collected.
	ErrLineageOwned = errors.New("lineage already owned")

	// ErrNotInitialStage is returned when acquiring a character that is not a stage-0 form.
	ErrNotInitialStage = errors.New("character is not an initial form")

	// ErrAlreadyMaxEvolved is returned when evolving a record that is already at the final stage.
	ErrAlreadyMaxEvolved = errors.New("character is already fully evolved")

	// ErrNoEvolutionPath is returned when the roster defines no next form for a character.
	ErrNoEvolutionPath = errors.New("no evolution path for character")

	// ErrCollectionComplete is returned when every lineage of the roster is already owned.
	ErrCollectionComplete = errors.New("collection complete")

	// ErrNoQuestionsConfigured is returned when the active question set is empty.
	ErrNoQuestionsConfigured = errors.New("no questions configured")

	// ErrUnknownQuestion is returned when a question id is not part of the question bank.
	ErrUnknownQuestion = errors.New("unknown question")

	// ErrUnknownFood is returned when a food id is not part of the food roster.
	ErrUnknownFood = errors.New("unknown food")

	// ErrFoodNotEligible is returned when a character cannot eat the given food.
	ErrFoodNotEligible = errors.New("food not eligible for character")

	// ErrOutOfFood is returned when feeding with a food whose inventory count is zero.
	ErrOutOfFood = errors.New("no food of this kind left")

	// ErrRewardEmpty is returned when adding a blank reward.
	ErrRewardEmpty = errors.New("reward cannot be empty")

	// ErrRewardExists is returned when adding a reward that is already in the pool.
	ErrRewardExists = errors.New("reward already exists")

	// ErrRewardNotFound is returned when removing a reward that is not in the pool.
	ErrRewardNotFound = errors.New("reward not found")
)
