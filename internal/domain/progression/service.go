// Package progression holds the pure rules for advancing collected
// characters: evolution along a lineage and milestone detection.
package progression

import (
	"errors"

	"github.com/phrazzld/kanji-trainer/internal/domain"
)

// ErrDefinitionMismatch is returned when the definition passed to Evolve does
// not describe the record's current form.
var ErrDefinitionMismatch = errors.New("definition does not match record")

// Service defines the interface for progression operations
type Service interface {
	// Evolve computes the record that results from evolving record, whose
	// current form is described by current.
	Evolve(
		record domain.CollectedCharacter,
		current domain.CharacterDefinition,
	) (domain.CollectedCharacter, error)

	// IsMilestone reports whether reaching uniqueCount lineages earns a reward.
	IsMilestone(uniqueCount int) bool
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new progression service with default parameters
func NewDefaultService() Service {
	return &defaultService{params: NewDefaultParams()}
}

// NewServiceWithParams creates a new progression service with custom parameters
func NewServiceWithParams(params *Params) Service {
	if params == nil {
		params = NewDefaultParams()
	}
	return &defaultService{params: params}
}

// Evolve implements the Service interface
func (s *defaultService) Evolve(
	record domain.CollectedCharacter,
	current domain.CharacterDefinition,
) (domain.CollectedCharacter, error) {
	if record.CharacterID != current.ID {
		return record, ErrDefinitionMismatch
	}
	if record.EvolutionLevel >= s.params.MaxStage {
		return record, domain.ErrAlreadyMaxEvolved
	}
	if current.NextEvolutionID == "" {
		return record, domain.ErrNoEvolutionPath
	}
	return calculateEvolution(record, current.NextEvolutionID, s.params), nil
}

// IsMilestone implements the Service interface
func (s *defaultService) IsMilestone(uniqueCount int) bool {
	return isMilestone(uniqueCount, s.params)
}
