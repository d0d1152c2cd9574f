package training_test

import (
	"testing"
	"time"

	"github.com/phrazzld/kanji-trainer/internal/config"
	"github.com/phrazzld/kanji-trainer/internal/domain"
	"github.com/phrazzld/kanji-trainer/internal/events"
	"github.com/phrazzld/kanji-trainer/internal/service/training"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPanicsOnMissingDependency(t *testing.T) {
	t.Parallel()
	assert.PanicsWithValue(t, "question selector cannot be nil", func() {
		training.New(training.Deps{}, training.DefaultConfig())
	})
}

func TestParse(t *testing.T) {
	t.Parallel()

	activity, err := training.ParseActivity("writing")
	require.NoError(t, err)
	assert.Equal(t, training.ActivityWriting, activity)

	goal, err := training.ParseGoal("get_new")
	require.NoError(t, err)
	assert.Equal(t, training.GoalGetNew, goal)

	policy, err := training.ParsePolicy("sequential")
	require.NoError(t, err)
	assert.Equal(t, training.PolicySequential, policy)

	for _, bad := range []func() error{
		func() error { _, err := training.ParseActivity("speaking"); return err },
		func() error { _, err := training.ParseGoal("trade"); return err },
		func() error { _, err := training.ParsePolicy(""); return err },
	} {
		assert.ErrorIs(t, bad(), training.ErrInvalidMode)
	}
}

func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg, err := training.NewConfig(config.SessionConfig{
		QuestionCount:      5,
		PhasePolicy:        "sequential",
		MilestoneInterval:  20,
		FeedbackDelay:      time.Second,
		RewardPopupDelay:   2 * time.Second,
		FoodPopupDelay:     3 * time.Second,
		FoodAfterExitDelay: 100 * time.Millisecond,
		Evolution: config.EvolutionConfig{
			Transform: time.Second,
			Reveal:    2 * time.Second,
			Complete:  3 * time.Second,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.QuestionCount)
	assert.Equal(t, training.PolicySequential, cfg.Policy)
	assert.Equal(t, 3*time.Second, cfg.Timing.FoodPopup)
	assert.Equal(t, 3*time.Second, cfg.Timing.Complete)

	_, err = training.NewConfig(config.SessionConfig{PhasePolicy: "random"})
	assert.ErrorIs(t, err, training.ErrInvalidMode)
}

func TestStartAndBack(t *testing.T) {
	t.Parallel()
	h := newHarness(t, withOwned(owned("fox", domain.StageInitial, 0)))

	_, err := h.machine.Back(h.ctx)
	assert.ErrorIs(t, err, training.ErrInvalidTransition)

	_, err = h.machine.Start(h.ctx, training.Activity("speaking"))
	assert.ErrorIs(t, err, training.ErrInvalidMode)
	assert.Equal(t, training.PhaseIdle, h.machine.Snapshot().Phase)

	snap := h.must(h.machine.Start(h.ctx, training.ActivityReading))
	assert.Equal(t, training.PhaseModeSelect, snap.Phase)
	require.NotNil(t, snap.Mode)
	assert.Equal(t, training.ActivityReading, snap.Mode.Activity)

	_, err = h.machine.Start(h.ctx, training.ActivityReading)
	assert.ErrorIs(t, err, training.ErrInvalidTransition)

	snap = h.must(h.machine.ChooseGoal(h.ctx, training.GoalEvolve))
	assert.Equal(t, training.PhaseCharacterSelect, snap.Phase)

	snap = h.must(h.machine.Back(h.ctx))
	assert.Equal(t, training.PhaseModeSelect, snap.Phase)
	assert.Empty(t, snap.Candidates)
	assert.Empty(t, snap.Mode.Goal)

	snap = h.must(h.machine.Back(h.ctx))
	assert.Equal(t, training.PhaseIdle, snap.Phase)
	assert.Nil(t, snap.Mode)
}

func TestChooseGoal(t *testing.T) {
	t.Parallel()

	t.Run("evolve with empty collection", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		h.must(h.machine.Start(h.ctx, training.ActivityReading))

		snap, err := h.machine.ChooseGoal(h.ctx, training.GoalEvolve)
		assert.ErrorIs(t, err, training.ErrEvolveUnavailable)
		assert.Equal(t, training.PhaseModeSelect, snap.Phase)
	})

	t.Run("unknown goal", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		h.must(h.machine.Start(h.ctx, training.ActivityReading))

		_, err := h.machine.ChooseGoal(h.ctx, training.Goal("trade"))
		assert.ErrorIs(t, err, training.ErrInvalidMode)
		assert.Equal(t, training.PhaseModeSelect, h.machine.Snapshot().Phase)
	})

	t.Run("outside mode selection", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)

		_, err := h.machine.ChooseGoal(h.ctx, training.GoalGetNew)
		assert.ErrorIs(t, err, training.ErrInvalidTransition)
	})

	t.Run("candidates are one per lineage", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, withOwned(
			owned("fox-2", domain.StageSecond, 1),
			owned("egg", domain.StageInitial, 0),
		))
		h.must(h.machine.Start(h.ctx, training.ActivityReading))

		snap := h.must(h.machine.ChooseGoal(h.ctx, training.GoalEvolve))
		var ids []string
		for _, c := range snap.Candidates {
			ids = append(ids, c.CharacterID)
		}
		assert.ElementsMatch(t, []string{"fox-2", "egg"}, ids)
	})
}

func TestSelectCharacterRejectsNonCandidate(t *testing.T) {
	t.Parallel()
	h := newHarness(t, withOwned(owned("fox-2", domain.StageSecond, 1)))
	h.begin(training.ActivityReading, training.GoalEvolve)

	_, err := h.machine.SelectCharacter(h.ctx, "fox")
	assert.ErrorIs(t, err, training.ErrNotACandidate)
	assert.Equal(t, training.PhaseCharacterSelect, h.machine.Snapshot().Phase)
}

func TestActionsOutsideTheirPhase(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	actions := map[string]func() (training.Snapshot, error){
		"answer":       func() (training.Snapshot, error) { return h.machine.Answer(h.ctx, "いち") },
		"acknowledge":  func() (training.Snapshot, error) { return h.machine.Acknowledge(h.ctx) },
		"writing done": func() (training.Snapshot, error) { return h.machine.WritingDone(h.ctx) },
		"continue":     func() (training.Snapshot, error) { return h.machine.Continue(h.ctx) },
		"reveal":       func() (training.Snapshot, error) { return h.machine.Reveal(h.ctx) },
		"finish":       func() (training.Snapshot, error) { return h.machine.Finish(h.ctx) },
		"exit":         func() (training.Snapshot, error) { return h.machine.RequestExit(h.ctx) },
		"confirm exit": func() (training.Snapshot, error) { return h.machine.ConfirmExit(h.ctx) },
		"select":       func() (training.Snapshot, error) { return h.machine.SelectCharacter(h.ctx, "fox") },
	}
	for name, action := range actions {
		snap, err := action()
		assert.ErrorIs(t, err, training.ErrInvalidTransition, name)
		assert.Equal(t, training.PhaseIdle, snap.Phase, name)
	}
}

func TestRevealOnlyOnce(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.begin(training.ActivityReading, training.GoalGetNew)
	h.answerAll(true)

	_, err := h.machine.Finish(h.ctx)
	assert.ErrorIs(t, err, training.ErrInvalidTransition)

	h.must(h.machine.Reveal(h.ctx))
	_, err = h.machine.Reveal(h.ctx)
	assert.ErrorIs(t, err, training.ErrInvalidTransition)
	assert.Len(t, h.records(), 1)
}

func TestExitIsNotOfferedOutsideQuestions(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.begin(training.ActivityReading, training.GoalGetNew)
	h.answerAll(true)

	_, err := h.machine.RequestExit(h.ctx)
	assert.ErrorIs(t, err, training.ErrInvalidTransition)
}

func TestPhaseChangesAreRecorded(t *testing.T) {
	t.Parallel()
	h := newHarness(t, withPolicy(training.PolicySequential), withCount(1))
	h.begin(training.ActivityReading, training.GoalGetNew)
	h.answerAll(true)
	h.must(h.machine.Continue(h.ctx))
	h.writeAll()

	var got []string
	for _, e := range h.eventsOf(events.TypePhaseChanged) {
		var payload map[string]any
		require.NoError(t, e.UnmarshalPayload(&payload))
		got = append(got, payload["to"].(string))
	}
	assert.Equal(t, []string{
		"mode_select",
		"reading",
		"transition",
		"writing",
		"resolution",
	}, got)
}
