package training

import "fmt"

// Activity is the top-level practice choice.
type Activity string

// Activities.
const (
	ActivityReading Activity = "reading"
	ActivityWriting Activity = "writing"
)

// ParseActivity converts a wire value into an Activity.
func ParseActivity(s string) (Activity, error) {
	switch a := Activity(s); a {
	case ActivityReading, ActivityWriting:
		return a, nil
	}
	return "", fmt.Errorf("%w: activity %q", ErrInvalidMode, s)
}

// Goal is what the session is played for.
type Goal string

// Goals.
const (
	GoalGetNew Goal = "get_new"
	GoalEvolve Goal = "evolve"
)

// ParseGoal converts a wire value into a Goal.
func ParseGoal(s string) (Goal, error) {
	switch g := Goal(s); g {
	case GoalGetNew, GoalEvolve:
		return g, nil
	}
	return "", fmt.Errorf("%w: goal %q", ErrInvalidMode, s)
}

// Mode is the full session choice. Goal is empty until chosen.
type Mode struct {
	Activity Activity `json:"activity"`
	Goal     Goal     `json:"goal,omitempty"`
}

// Policy decides which question phases a session runs.
type Policy string

// Policies.
const (
	// PolicySingle runs only the phase named by the activity.
	PolicySingle Policy = "single"
	// PolicySequential runs reading, a transition screen, then writing,
	// whatever the activity.
	PolicySequential Policy = "sequential"
)

// ParsePolicy converts a configuration value into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicySingle, PolicySequential:
		return p, nil
	}
	return "", fmt.Errorf("%w: policy %q", ErrInvalidMode, s)
}

// plan returns the question phases, in order, for an activity.
func (p Policy) plan(a Activity) []Phase {
	if p == PolicySequential {
		return []Phase{PhaseReading, PhaseWriting}
	}
	if a == ActivityWriting {
		return []Phase{PhaseWriting}
	}
	return []Phase{PhaseReading}
}
