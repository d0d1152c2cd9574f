package training

import (
	"github.com/phrazzld/kanji-trainer/internal/domain"
)

// Phase is a state of the session machine.
type Phase string

// Phases.
const (
	PhaseIdle            Phase = "idle"
	PhaseModeSelect      Phase = "mode_select"
	PhaseCharacterSelect Phase = "character_select"
	PhaseReading         Phase = "reading"
	PhaseTransition      Phase = "transition"
	PhaseWriting         Phase = "writing"
	PhaseResolution      Phase = "resolution"
	PhaseEvolution       Phase = "evolution"
)

func (p Phase) isQuestion() bool {
	return p == PhaseReading || p == PhaseWriting || p == PhaseTransition
}

// Feedback is the transient result shown after a reading answer.
type Feedback string

// Feedback values.
const (
	FeedbackNone      Feedback = "none"
	FeedbackCorrect   Feedback = "correct"
	FeedbackIncorrect Feedback = "incorrect"
)

// EvolutionStep is a presentation step of the evolution animation.
type EvolutionStep string

// Evolution steps, in the order they are entered.
const (
	StepFlash     EvolutionStep = "flash"
	StepTransform EvolutionStep = "transform"
	StepReveal    EvolutionStep = "reveal"
	StepComplete  EvolutionStep = "complete"
)

// PopupKind identifies an overlay popup.
type PopupKind string

// Popup kinds.
const (
	PopupFood   PopupKind = "food"
	PopupReward PopupKind = "reward"
)

// ParsePopupKind converts a wire value into a PopupKind.
func ParsePopupKind(s string) (PopupKind, bool) {
	switch k := PopupKind(s); k {
	case PopupFood, PopupReward:
		return k, true
	}
	return "", false
}

// Popup is an overlay shown on top of whatever phase is current. Popups
// survive the return to idle until dismissed.
type Popup struct {
	Kind   PopupKind        `json:"kind"`
	Food   *domain.FoodItem `json:"food,omitempty"`
	Reward string           `json:"reward,omitempty"`
}

// NoticeKind classifies a recoverable condition reported to the learner.
type NoticeKind string

// Notice kinds.
const (
	// NoticeConfigure asks the learner to pick questions in the settings.
	NoticeConfigure NoticeKind = "configure_questions"
	// NoticeEvolutionFailed reports an evolve that the roster or the
	// record did not allow.
	NoticeEvolutionFailed NoticeKind = "evolution_failed"
	// NoticeCollectionComplete reports that no unowned lineage is left.
	NoticeCollectionComplete NoticeKind = "collection_complete"
	// NoticeStorageFailed reports a store error that ended the session.
	NoticeStorageFailed NoticeKind = "storage_failed"
)

// Notice is a recoverable condition. Err is the domain sentinel behind it.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
	Err     error      `json:"-"`
}

func newNotice(kind NoticeKind, err error) *Notice {
	return &Notice{Kind: kind, Message: err.Error(), Err: err}
}

// Resolution is the reward stage of a get-new session.
type Resolution struct {
	// Character is nil when the collection is complete.
	Character *domain.CharacterDefinition `json:"character,omitempty"`
	Revealed  bool                        `json:"revealed"`
	Food      domain.FoodItem             `json:"food"`
	Milestone bool                        `json:"milestone"`
}

// Evolution is the state of a running evolution animation.
type Evolution struct {
	Step   EvolutionStep              `json:"step"`
	From   domain.CharacterDefinition `json:"from"`
	To     domain.CharacterDefinition `json:"to"`
	Food   domain.FoodItem            `json:"food"`
	Record domain.CollectedCharacter  `json:"record"`
}

// Snapshot is a copy of the machine state for rendering.
type Snapshot struct {
	Generation     uint64                      `json:"generation"`
	Phase          Phase                       `json:"phase"`
	Policy         Policy                      `json:"policy"`
	Mode           *Mode                       `json:"mode,omitempty"`
	Question       *domain.Question            `json:"question,omitempty"`
	Index          int                         `json:"index"`
	Total          int                         `json:"total"`
	CorrectCount   int                         `json:"correct_count"`
	Feedback       Feedback                    `json:"feedback"`
	SelectedAnswer string                      `json:"selected_answer,omitempty"`
	Message        string                      `json:"message,omitempty"`
	ConfirmingExit bool                        `json:"confirming_exit"`
	Candidates     []domain.CollectedCharacter `json:"candidates,omitempty"`
	Target         *domain.CollectedCharacter  `json:"target,omitempty"`
	Resolution     *Resolution                 `json:"resolution,omitempty"`
	Evolution      *Evolution                  `json:"evolution,omitempty"`
	Popups         []Popup                     `json:"popups"`
	Notice         *Notice                     `json:"notice,omitempty"`
}
