package training_test

import (
	"context"
	"testing"
	"time"

	"github.com/phrazzld/kanji-trainer/internal/content"
	"github.com/phrazzld/kanji-trainer/internal/domain"
	"github.com/phrazzld/kanji-trainer/internal/domain/progression"
	"github.com/phrazzld/kanji-trainer/internal/events"
	"github.com/phrazzld/kanji-trainer/internal/random"
	"github.com/phrazzld/kanji-trainer/internal/schedule"
	"github.com/phrazzld/kanji-trainer/internal/service/collection"
	"github.com/phrazzld/kanji-trainer/internal/service/history"
	"github.com/phrazzld/kanji-trainer/internal/service/inventory"
	"github.com/phrazzld/kanji-trainer/internal/service/rewards"
	"github.com/phrazzld/kanji-trainer/internal/service/settings"
	"github.com/phrazzld/kanji-trainer/internal/service/training"
	"github.com/phrazzld/kanji-trainer/internal/store"
	"github.com/phrazzld/kanji-trainer/internal/testutils"
	"github.com/stretchr/testify/require"
)

var timing = training.DefaultTiming()

type options struct {
	policy    training.Policy
	count     int
	active    []string
	rewards   []string
	content   *content.Content
	owned     []domain.CollectedCharacter
	scheduler func(*schedule.Manual) schedule.Scheduler
	ledger    func(training.Ledger) training.Ledger
}

type option func(*options)

func withPolicy(p training.Policy) option { return func(o *options) { o.policy = p } }

func withCount(n int) option { return func(o *options) { o.count = n } }

func withActive(ids ...string) option { return func(o *options) { o.active = ids } }

func withContent(c *content.Content) option { return func(o *options) { o.content = c } }

func withOwned(records ...domain.CollectedCharacter) option {
	return func(o *options) { o.owned = records }
}

func withScheduler(wrap func(*schedule.Manual) schedule.Scheduler) option {
	return func(o *options) { o.scheduler = wrap }
}

func withLedger(wrap func(training.Ledger) training.Ledger) option {
	return func(o *options) { o.ledger = wrap }
}

type harness struct {
	t         *testing.T
	ctx       context.Context
	machine   *training.Machine
	clock     *schedule.Manual
	slots     *store.Slots
	ledger    collection.Ledger
	inventory inventory.Manager
	rewards   rewards.Manager
	history   history.Log
	recorder  *events.Recorder
}

func newHarness(t *testing.T, opts ...option) *harness {
	t.Helper()
	o := options{
		policy:  training.PolicySingle,
		count:   3,
		active:  []string{"一", "二"},
		rewards: []string{"ice cream", "movie night"},
	}
	for _, opt := range opts {
		opt(&o)
	}
	c := o.content
	if c == nil {
		c = testutils.NewTestContent(t)
	}

	ctx := context.Background()
	log := testutils.DiscardLogger()
	slots := testutils.NewMemorySlots(t, store.Defaults{ActiveQuestionIDs: o.active, Rewards: o.rewards})
	if len(o.owned) > 0 {
		_, err := slots.UpdateCollected(ctx, func([]domain.CollectedCharacter) ([]domain.CollectedCharacter, error) {
			return o.owned, nil
		})
		require.NoError(t, err)
	}

	clock := schedule.NewManual(testutils.DefaultTime)
	var sched schedule.Scheduler = clock
	if o.scheduler != nil {
		sched = o.scheduler(clock)
	}

	prog := progression.NewDefaultService()
	ledger := collection.NewLedger(slots, c.Roster, prog, clock, log)
	inv := inventory.NewManager(slots, log)
	rw := rewards.NewManager(slots, random.MustNew(testutils.TestSeed), log)
	hist := history.NewLog(slots, clock, log)

	recorder := events.NewRecorder(500)
	emitter := events.NewInMemoryEventEmitter(log)
	emitter.RegisterHandler(recorder)

	var machineLedger training.Ledger = ledger
	if o.ledger != nil {
		machineLedger = o.ledger(ledger)
	}

	m := training.New(training.Deps{
		Questions:   c.Bank,
		Active:      settings.NewService(slots, c.Bank, log),
		Ledger:      machineLedger,
		Roster:      c.Roster,
		Foods:       c.Foods,
		Inventory:   inv,
		Rewards:     rw,
		History:     hist,
		Messages:    c.Messages,
		Store:       slots,
		Progression: prog,
		Scheduler:   sched,
		Emitter:     emitter,
		Logger:      log,
	}, training.Config{QuestionCount: o.count, Policy: o.policy, Timing: timing})

	return &harness{
		t:         t,
		ctx:       ctx,
		machine:   m,
		clock:     clock,
		slots:     slots,
		ledger:    ledger,
		inventory: inv,
		rewards:   rw,
		history:   hist,
		recorder:  recorder,
	}
}

func (h *harness) must(snap training.Snapshot, err error) training.Snapshot {
	h.t.Helper()
	require.NoError(h.t, err)
	return snap
}

// begin starts a session and chooses the goal.
func (h *harness) begin(activity training.Activity, goal training.Goal) training.Snapshot {
	h.t.Helper()
	h.must(h.machine.Start(h.ctx, activity))
	return h.must(h.machine.ChooseGoal(h.ctx, goal))
}

// answerAll answers every remaining reading question, correctly or not,
// letting each feedback cycle resolve.
func (h *harness) answerAll(correct bool) training.Snapshot {
	h.t.Helper()
	snap := h.machine.Snapshot()
	for snap.Phase == training.PhaseReading {
		q := snap.Question
		require.NotNil(h.t, q)
		option := q.CorrectAnswer
		if !correct {
			option = q.Distractors()[0]
		}
		h.must(h.machine.Answer(h.ctx, option))
		if correct {
			h.clock.Advance(timing.Feedback)
			snap = h.machine.Snapshot()
		} else {
			snap = h.must(h.machine.Acknowledge(h.ctx))
		}
	}
	return snap
}

// writeAll marks every remaining writing item done.
func (h *harness) writeAll() training.Snapshot {
	h.t.Helper()
	snap := h.machine.Snapshot()
	for snap.Phase == training.PhaseWriting {
		snap = h.must(h.machine.WritingDone(h.ctx))
	}
	return snap
}

func (h *harness) foodTotal() int {
	h.t.Helper()
	inv, err := h.inventory.State(h.ctx)
	require.NoError(h.t, err)
	total := 0
	for _, n := range inv {
		total += n
	}
	return total
}

func (h *harness) records() []domain.CollectedCharacter {
	h.t.Helper()
	records, err := h.ledger.Records(h.ctx)
	require.NoError(h.t, err)
	return records
}

func (h *harness) historyEntries() []domain.HistoryEntry {
	h.t.Helper()
	entries, err := h.history.List(h.ctx)
	require.NoError(h.t, err)
	return entries
}

func (h *harness) eventsOf(eventType string) []*events.Event {
	var out []*events.Event
	for _, e := range h.recorder.Events() {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func owned(id string, level domain.EvolutionStage, count int) domain.CollectedCharacter {
	return domain.CollectedCharacter{
		CharacterID:    id,
		CollectedAt:    testutils.DefaultTime,
		EvolutionLevel: level,
		TrainingCount:  count,
	}
}

// leakyScheduler never cancels timers, as if every Stop lost the race
// against a callback already on its way.
type leakyScheduler struct {
	*schedule.Manual
}

type leakyTimer struct{}

func (leakyTimer) Stop() bool { return false }

func (s leakyScheduler) AfterFunc(d time.Duration, fn func()) schedule.Timer {
	s.Manual.AfterFunc(d, fn)
	return leakyTimer{}
}

// failingUniqueLedger stores acquisitions but cannot list them once armed.
type failingUniqueLedger struct {
	training.Ledger
	armed bool
	err   error
}

func (l *failingUniqueLedger) UniqueByLineage(ctx context.Context) ([]domain.CollectedCharacter, error) {
	if l.armed {
		return nil, l.err
	}
	return l.Ledger.UniqueByLineage(ctx)
}
