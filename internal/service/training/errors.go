package training

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned when an action is not allowed in the
	// current phase. It is wrapped with the action and phase.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrInvalidMode is returned for an unknown activity, goal or policy.
	ErrInvalidMode = errors.New("invalid mode")

	// ErrEvolveUnavailable is returned when evolve is chosen with an empty collection.
	ErrEvolveUnavailable = errors.New("evolve unavailable: no characters collected")

	// ErrNotACandidate is returned when selecting a character that is not the
	// current form of an owned lineage.
	ErrNotACandidate = errors.New("character is not a training candidate")

	// ErrNoPopup is returned when dismissing a popup that is not shown.
	ErrNoPopup = errors.New("popup not shown")
)

func invalidTransition(action string, phase Phase) error {
	return fmt.Errorf("%w: %s during %s", ErrInvalidTransition, action, phase)
}
