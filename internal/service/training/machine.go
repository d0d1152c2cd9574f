// Package training implements the session state machine: mode selection,
// the reading and writing question phases, resolution into a new character
// or an evolution, and the timed evolution sequence.
//
// Every action and every timer runs under one lock, so the machine behaves
// as if single-threaded. Timers carry the generation they were scheduled
// in and are dropped if the session has been reset since.
package training

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/phrazzld/kanji-trainer/internal/domain"
	"github.com/phrazzld/kanji-trainer/internal/events"
	"github.com/phrazzld/kanji-trainer/internal/platform/logger"
	"github.com/phrazzld/kanji-trainer/internal/schedule"
)

// session is the working memory of one session. It is nil while idle.
type session struct {
	mode           Mode
	plan           []Phase
	step           int
	queue          []domain.Question
	index          int
	correct        int
	feedback       Feedback
	selected       string
	message        string
	confirmingExit bool
	parked         bool
	candidates     []domain.CollectedCharacter
	target         *domain.CollectedCharacter
	resolution     *Resolution
	evolution      *Evolution
}

type stagedPopup struct {
	popup Popup
	timer schedule.Timer
}

// Machine is the training session state machine.
type Machine struct {
	deps    Deps
	cfg     Config
	emitter events.EventEmitter
	logger  *slog.Logger

	mu     sync.Mutex
	gen    uint64
	phase  Phase
	sess   *session
	notice *Notice
	popups []Popup
	staged []*stagedPopup
	timers []schedule.Timer
	outbox []*events.Event
}

// New creates an idle Machine. It panics if a required dependency is nil.
func New(deps Deps, cfg Config) *Machine {
	deps.check()
	if cfg.QuestionCount <= 0 {
		cfg.QuestionCount = DefaultConfig().QuestionCount
	}
	if cfg.Policy == "" {
		cfg.Policy = PolicySingle
	}
	emitter := deps.Emitter
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Machine{
		deps:    deps,
		cfg:     cfg,
		emitter: emitter,
		logger:  log.With(slog.String("component", "training")),
		phase:   PhaseIdle,
	}
}

// do runs an action under the lock, then emits the events it produced.
func (m *Machine) do(ctx context.Context, fn func(ctx context.Context) error) (Snapshot, error) {
	ctx = logger.WithLogger(ctx, logger.FromContextOrDefault(ctx, m.logger))

	m.mu.Lock()
	err := fn(ctx)
	snap := m.snapshotLocked()
	out := m.drainLocked()
	m.mu.Unlock()

	m.emit(ctx, out)
	return snap, err
}

func (m *Machine) emit(ctx context.Context, out []*events.Event) {
	for _, evt := range out {
		if err := m.emitter.EmitEvent(ctx, evt); err != nil {
			m.logger.Warn("failed to emit event",
				slog.String("event_type", evt.Type),
				slog.String("error", err.Error()))
		}
	}
}

func (m *Machine) drainLocked() []*events.Event {
	out := m.outbox
	m.outbox = nil
	return out
}

func (m *Machine) record(eventType string, payload any) {
	evt, err := events.NewEvent(eventType, payload, m.deps.Scheduler.Now())
	if err != nil {
		m.logger.Warn("failed to build event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
		return
	}
	m.outbox = append(m.outbox, evt)
}

func (m *Machine) setPhase(to Phase) {
	if m.phase == to {
		return
	}
	from := m.phase
	m.phase = to
	m.logger.Debug("phase changed",
		slog.String("from", string(from)),
		slog.String("to", string(to)),
		slog.Uint64("generation", m.gen))
	m.record(events.TypePhaseChanged, map[string]any{
		"from":       from,
		"to":         to,
		"generation": m.gen,
	})
}

// after schedules fn in the current generation.
func (m *Machine) after(d time.Duration, name string, fn func(ctx context.Context)) schedule.Timer {
	gen := m.gen
	t := m.deps.Scheduler.AfterFunc(d, func() {
		ctx := logger.WithLogger(context.Background(), m.logger)

		m.mu.Lock()
		if m.gen != gen {
			m.mu.Unlock()
			m.logger.Debug("stale timer dropped",
				slog.String("timer", name),
				slog.Uint64("scheduled_generation", gen))
			return
		}
		fn(ctx)
		out := m.drainLocked()
		m.mu.Unlock()

		m.emit(ctx, out)
	})
	m.timers = append(m.timers, t)
	return t
}

// stagePopup shows p after d. Staged popups are shown at once when the
// generation changes, so leaving a screen never loses one.
func (m *Machine) stagePopup(p Popup, d time.Duration) {
	sp := &stagedPopup{popup: p}
	m.staged = append(m.staged, sp)
	sp.timer = m.after(d, "popup:"+string(p.Kind), func(context.Context) {
		if i := slices.Index(m.staged, sp); i >= 0 {
			m.staged = slices.Delete(m.staged, i, i+1)
			m.popups = append(m.popups, sp.popup)
		}
	})
}

func (m *Machine) promoteStaged() {
	for _, sp := range m.staged {
		sp.timer.Stop()
		m.popups = append(m.popups, sp.popup)
	}
	m.staged = nil
}

// nextGeneration invalidates every timer of the current generation.
func (m *Machine) nextGeneration() {
	m.promoteStaged()
	for _, t := range m.timers {
		t.Stop()
	}
	m.timers = nil
	m.gen++
}

// reset discards the session and returns to idle.
func (m *Machine) reset() {
	m.nextGeneration()
	m.sess = nil
	m.setPhase(PhaseIdle)
}

func (m *Machine) raise(ctx context.Context, n *Notice) {
	m.notice = n
	logger.FromContextOrDefault(ctx, m.logger).Warn("session notice",
		slog.String("kind", string(n.Kind)),
		slog.String("message", n.Message))
	m.record(events.TypeNoticeRaised, map[string]any{"kind": n.Kind, "message": n.Message})
}

// storageFailed ends the session after a store error.
func (m *Machine) storageFailed(ctx context.Context, op string, err error) {
	logger.FromContextOrDefault(ctx, m.logger).Error("store operation failed",
		slog.String("operation", op),
		slog.String("error", err.Error()))
	m.reset()
	m.raise(ctx, newNotice(NoticeStorageFailed, err))
}

// Snapshot returns the current state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Machine) snapshotLocked() Snapshot {
	snap := Snapshot{
		Generation: m.gen,
		Phase:      m.phase,
		Policy:     m.cfg.Policy,
		Feedback:   FeedbackNone,
		Popups:     slices.Clone(m.popups),
	}
	if snap.Popups == nil {
		snap.Popups = []Popup{}
	}
	if m.notice != nil {
		n := *m.notice
		snap.Notice = &n
	}
	s := m.sess
	if s == nil {
		return snap
	}

	mode := s.mode
	snap.Mode = &mode
	snap.Index = s.index
	snap.Total = len(s.queue)
	snap.CorrectCount = s.correct
	snap.Feedback = s.feedback
	snap.SelectedAnswer = s.selected
	snap.Message = s.message
	snap.ConfirmingExit = s.confirmingExit
	if m.phase == PhaseReading || m.phase == PhaseWriting {
		q := s.queue[s.index]
		snap.Question = &q
	}
	if m.phase == PhaseCharacterSelect {
		snap.Candidates = slices.Clone(s.candidates)
	}
	if s.target != nil {
		t := *s.target
		snap.Target = &t
	}
	if s.resolution != nil {
		r := *s.resolution
		snap.Resolution = &r
	}
	if s.evolution != nil {
		e := *s.evolution
		snap.Evolution = &e
	}
	return snap
}

// Start leaves idle for mode selection with the chosen activity. Any
// notice from the previous session is cleared.
func (m *Machine) Start(ctx context.Context, activity Activity) (Snapshot, error) {
	return m.do(ctx, func(ctx context.Context) error {
		if m.phase != PhaseIdle {
			return invalidTransition("start", m.phase)
		}
		if _, err := ParseActivity(string(activity)); err != nil {
			return err
		}
		m.notice = nil
		m.nextGeneration()
		m.sess = &session{mode: Mode{Activity: activity}, feedback: FeedbackNone}
		m.setPhase(PhaseModeSelect)
		return nil
	})
}

// ChooseGoal picks get-new or evolve. Evolve moves to character selection
// and fails with ErrEvolveUnavailable when nothing is collected.
func (m *Machine) ChooseGoal(ctx context.Context, goal Goal) (Snapshot, error) {
	return m.do(ctx, func(ctx context.Context) error {
		if m.phase != PhaseModeSelect {
			return invalidTransition("choose goal", m.phase)
		}
		switch goal {
		case GoalGetNew:
			m.sess.mode.Goal = GoalGetNew
			return m.startQueue(ctx)
		case GoalEvolve:
			candidates, err := m.deps.Ledger.UniqueByLineage(ctx)
			if err != nil {
				return err
			}
			if len(candidates) == 0 {
				return ErrEvolveUnavailable
			}
			m.sess.mode.Goal = GoalEvolve
			m.sess.candidates = candidates
			m.setPhase(PhaseCharacterSelect)
			return nil
		}
		_, err := ParseGoal(string(goal))
		return err
	})
}

// Back returns from character selection to mode selection, or from mode
// selection to idle. Neither needs confirmation.
func (m *Machine) Back(ctx context.Context) (Snapshot, error) {
	return m.do(ctx, func(ctx context.Context) error {
		switch m.phase {
		case PhaseModeSelect:
			m.reset()
			return nil
		case PhaseCharacterSelect:
			m.sess.mode.Goal = ""
			m.sess.candidates = nil
			m.setPhase(PhaseModeSelect)
			return nil
		}
		return invalidTransition("back", m.phase)
	})
}

// SelectCharacter picks the owned character to evolve and starts the queue.
func (m *Machine) SelectCharacter(ctx context.Context, characterID string) (Snapshot, error) {
	return m.do(ctx, func(ctx context.Context) error {
		if m.phase != PhaseCharacterSelect {
			return invalidTransition("select character", m.phase)
		}
		i := slices.IndexFunc(m.sess.candidates, func(r domain.CollectedCharacter) bool {
			return r.CharacterID == characterID
		})
		if i < 0 {
			return ErrNotACandidate
		}
		target := m.sess.candidates[i]
		m.sess.target = &target
		return m.startQueue(ctx)
	})
}

// startQueue draws the questions and enters the first question phase. An
// empty active set ends the session with a configure notice.
func (m *Machine) startQueue(ctx context.Context) error {
	active, err := m.deps.Active.Active(ctx)
	if err != nil {
		return err
	}
	queue := m.deps.Questions.SelectQuestions(active, m.cfg.QuestionCount)
	if len(queue) == 0 {
		m.reset()
		m.raise(ctx, newNotice(NoticeConfigure, domain.ErrNoQuestionsConfigured))
		return nil
	}

	s := m.sess
	s.queue = queue
	s.plan = m.cfg.Policy.plan(s.mode.Activity)
	s.step = 0
	s.index = 0
	s.correct = 0
	s.candidates = nil
	m.record(events.TypeSessionStarted, map[string]any{
		"activity":  s.mode.Activity,
		"goal":      s.mode.Goal,
		"questions": len(queue),
	})
	m.setPhase(s.plan[0])
	return nil
}

// Answer submits a reading answer. The answer is written to history at
// once. A correct answer advances after the feedback delay; an incorrect
// one waits for Acknowledge.
func (m *Machine) Answer(ctx context.Context, option string) (Snapshot, error) {
	return m.do(ctx, func(ctx context.Context) error {
		s := m.sess
		if m.phase != PhaseReading || s.feedback != FeedbackNone || s.confirmingExit {
			return invalidTransition("answer", m.phase)
		}
		q := s.queue[s.index]
		correct := q.IsCorrect(option)
		if _, err := m.deps.History.Append(ctx, q.ID, correct); err != nil {
			return err
		}
		m.record(events.TypeAnswerRecorded, map[string]any{
			"question_id": q.ID,
			"outcome":     domain.OutcomeOf(correct),
			"index":       s.index,
		})

		s.selected = option
		if !correct {
			s.feedback = FeedbackIncorrect
			s.message = m.deps.Messages.Encouragement()
			return nil
		}
		s.feedback = FeedbackCorrect
		s.message = m.deps.Messages.Praise()
		s.correct++
		m.after(m.cfg.Timing.Feedback, "feedback", m.feedbackElapsed)
		return nil
	})
}

// Acknowledge moves on after an incorrect answer.
func (m *Machine) Acknowledge(ctx context.Context) (Snapshot, error) {
	return m.do(ctx, func(ctx context.Context) error {
		if m.phase != PhaseReading || m.sess.feedback != FeedbackIncorrect || m.sess.confirmingExit {
			return invalidTransition("acknowledge", m.phase)
		}
		m.advance(ctx)
		return nil
	})
}

// WritingDone marks the current writing item as practised.
func (m *Machine) WritingDone(ctx context.Context) (Snapshot, error) {
	return m.do(ctx, func(ctx context.Context) error {
		if m.phase != PhaseWriting || m.sess.confirmingExit {
			return invalidTransition("writing done", m.phase)
		}
		m.advance(ctx)
		return nil
	})
}

// Continue leaves the transition screen for the next question phase.
func (m *Machine) Continue(ctx context.Context) (Snapshot, error) {
	return m.do(ctx, func(ctx context.Context) error {
		if m.phase != PhaseTransition || m.sess.confirmingExit {
			return invalidTransition("continue", m.phase)
		}
		s := m.sess
		s.step++
		s.index = 0
		m.setPhase(s.plan[s.step])
		return nil
	})
}

// feedbackElapsed advances after a correct answer, unless the learner is
// being asked to confirm an exit. The advance then waits for CancelExit.
func (m *Machine) feedbackElapsed(ctx context.Context) {
	if m.sess.confirmingExit {
		m.sess.parked = true
		return
	}
	m.advance(ctx)
}

// advance clears feedback and moves to the next question, the transition
// screen, or resolution.
func (m *Machine) advance(ctx context.Context) {
	s := m.sess
	s.feedback = FeedbackNone
	s.selected = ""
	s.message = ""
	if s.index < len(s.queue)-1 {
		s.index++
		return
	}
	if s.step < len(s.plan)-1 {
		m.setPhase(PhaseTransition)
		return
	}
	m.resolve(ctx)
}

// RequestExit asks to abandon a running session. Nothing is discarded
// until ConfirmExit.
func (m *Machine) RequestExit(ctx context.Context) (Snapshot, error) {
	return m.do(ctx, func(ctx context.Context) error {
		if !m.phase.isQuestion() || m.sess.confirmingExit {
			return invalidTransition("exit", m.phase)
		}
		m.sess.confirmingExit = true
		return nil
	})
}

// ConfirmExit abandons the session. History already written is kept.
func (m *Machine) ConfirmExit(ctx context.Context) (Snapshot, error) {
	return m.do(ctx, func(ctx context.Context) error {
		if m.sess == nil || !m.sess.confirmingExit || !m.phase.isQuestion() {
			return invalidTransition("confirm exit", m.phase)
		}
		s := m.sess
		m.record(events.TypeSessionAbandoned, map[string]any{
			"phase":   m.phase,
			"index":   s.index,
			"correct": s.correct,
		})
		logger.FromContextOrDefault(ctx, m.logger).Info("session abandoned",
			slog.String("phase", string(m.phase)),
			slog.Int("index", s.index))
		m.reset()
		return nil
	})
}

// CancelExit keeps the session running. A feedback delay that ran out
// while the confirmation was open advances now.
func (m *Machine) CancelExit(ctx context.Context) (Snapshot, error) {
	return m.do(ctx, func(ctx context.Context) error {
		s := m.sess
		if s == nil || !s.confirmingExit {
			return invalidTransition("cancel exit", m.phase)
		}
		s.confirmingExit = false
		if s.parked {
			s.parked = false
			m.advance(ctx)
		}
		return nil
	})
}

// DismissPopup closes the oldest shown popup of kind.
func (m *Machine) DismissPopup(ctx context.Context, kind PopupKind) (Snapshot, error) {
	return m.do(ctx, func(ctx context.Context) error {
		i := slices.IndexFunc(m.popups, func(p Popup) bool { return p.Kind == kind })
		if i < 0 {
			return ErrNoPopup
		}
		m.popups = slices.Delete(m.popups, i, i+1)
		return nil
	})
}
