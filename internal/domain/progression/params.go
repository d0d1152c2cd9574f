package progression

import "github.com/phrazzld/kanji-trainer/internal/domain"

// Params defines the configurable parameters of character progression
type Params struct {
	// MaxStage is the last evolution stage a record can reach
	MaxStage domain.EvolutionStage

	// TrainingIncrement is added to a record's training count on each evolution
	TrainingIncrement int

	// MilestoneInterval is the number of unique lineages between reward draws
	MilestoneInterval int
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		MaxStage:          domain.StageFinal,
		TrainingIncrement: 1,
		MilestoneInterval: 20,
	}
}

// NewParams creates Params with the given milestone interval. A non-positive
// interval falls back to the default.
func NewParams(milestoneInterval int) *Params {
	p := NewDefaultParams()
	if milestoneInterval > 0 {
		p.MilestoneInterval = milestoneInterval
	}
	return p
}
