package training

import (
	"time"

	"github.com/phrazzld/kanji-trainer/internal/config"
)

// Timing holds every delay the machine schedules.
type Timing struct {
	// Feedback is how long a correct answer is shown before advancing.
	Feedback time.Duration
	// RewardPopup delays the milestone reward popup after a reveal.
	RewardPopup time.Duration
	// FoodPopup delays the food popup after a reveal.
	FoodPopup time.Duration
	// FoodAfterExit delays the food popup after leaving an evolution.
	FoodAfterExit time.Duration
	// Transform, Reveal and Complete are evolution step offsets from entry.
	Transform time.Duration
	Reveal    time.Duration
	Complete  time.Duration
}

// DefaultTiming returns the standard delays.
func DefaultTiming() Timing {
	return Timing{
		Feedback:      1200 * time.Millisecond,
		RewardPopup:   2000 * time.Millisecond,
		FoodPopup:     2000 * time.Millisecond,
		FoodAfterExit: 300 * time.Millisecond,
		Transform:     1000 * time.Millisecond,
		Reveal:        3000 * time.Millisecond,
		Complete:      4000 * time.Millisecond,
	}
}

// Config holds the session rules.
type Config struct {
	QuestionCount int
	Policy        Policy
	Timing        Timing
}

// DefaultConfig returns ten questions, the single-phase policy and the
// standard delays.
func DefaultConfig() Config {
	return Config{QuestionCount: 10, Policy: PolicySingle, Timing: DefaultTiming()}
}

// NewConfig converts the session section of the application config.
func NewConfig(cfg config.SessionConfig) (Config, error) {
	policy, err := ParsePolicy(cfg.PhasePolicy)
	if err != nil {
		return Config{}, err
	}
	return Config{
		QuestionCount: cfg.QuestionCount,
		Policy:        policy,
		Timing: Timing{
			Feedback:      cfg.FeedbackDelay,
			RewardPopup:   cfg.RewardPopupDelay,
			FoodPopup:     cfg.FoodPopupDelay,
			FoodAfterExit: cfg.FoodAfterExitDelay,
			Transform:     cfg.Evolution.Transform,
			Reveal:        cfg.Evolution.Reveal,
			Complete:      cfg.Evolution.Complete,
		},
	}, nil
}
