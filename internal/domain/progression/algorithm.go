package progression

import "github.com/phrazzld/kanji-trainer/internal/domain"

// calculateEvolution returns a new record advanced to the next form.
//
// The input record is not modified. The caller has already verified that
// the record is below params.MaxStage and that nextID is non-empty.
func calculateEvolution(
	record domain.CollectedCharacter,
	nextID string,
	params *Params,
) domain.CollectedCharacter {
	next := record
	next.CharacterID = nextID
	next.EvolutionLevel = record.EvolutionLevel + 1
	next.TrainingCount = record.TrainingCount + params.TrainingIncrement
	return next
}

// isMilestone reports whether a unique lineage count lands on a reward
// milestone: a positive multiple of the interval.
func isMilestone(uniqueCount int, params *Params) bool {
	if uniqueCount <= 0 || params.MilestoneInterval <= 0 {
		return false
	}
	return uniqueCount%params.MilestoneInterval == 0
}
