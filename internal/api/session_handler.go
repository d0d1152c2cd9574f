package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/phrazzld/kanji-trainer/internal/api/shared"
	"github.com/phrazzld/kanji-trainer/internal/platform/logger"
	"github.com/phrazzld/kanji-trainer/internal/service/training"
)

// Session is the training state machine as the handlers use it.
type Session interface {
	Snapshot() training.Snapshot
	Start(ctx context.Context, activity training.Activity) (training.Snapshot, error)
	ChooseGoal(ctx context.Context, goal training.Goal) (training.Snapshot, error)
	Back(ctx context.Context) (training.Snapshot, error)
	SelectCharacter(ctx context.Context, characterID string) (training.Snapshot, error)
	Answer(ctx context.Context, option string) (training.Snapshot, error)
	Acknowledge(ctx context.Context) (training.Snapshot, error)
	WritingDone(ctx context.Context) (training.Snapshot, error)
	Continue(ctx context.Context) (training.Snapshot, error)
	Reveal(ctx context.Context) (training.Snapshot, error)
	Finish(ctx context.Context) (training.Snapshot, error)
	RequestExit(ctx context.Context) (training.Snapshot, error)
	ConfirmExit(ctx context.Context) (training.Snapshot, error)
	CancelExit(ctx context.Context) (training.Snapshot, error)
	DismissPopup(ctx context.Context, kind training.PopupKind) (training.Snapshot, error)
}

var _ Session = (*training.Machine)(nil)

// SessionHandler serves the session routes. Every successful action
// answers with the new snapshot.
type SessionHandler struct {
	session Session
	logger  *slog.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(session Session, logger *slog.Logger) *SessionHandler {
	if session == nil {
		panic("session cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionHandler{
		session: session,
		logger:  logger.With(slog.String("component", "session_handler")),
	}
}

type sessionAction func(ctx context.Context) (training.Snapshot, error)

func (h *SessionHandler) respond(w http.ResponseWriter, r *http.Request, snap training.Snapshot, err error) {
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	logger.FromContextOrDefault(r.Context(), h.logger).Debug("session action",
		slog.String("path", r.URL.Path),
		slog.String("phase", string(snap.Phase)),
		slog.Uint64("generation", snap.Generation))
	shared.RespondWithJSON(w, r, http.StatusOK, snap)
}

func (h *SessionHandler) run(action sessionAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := action(r.Context())
		h.respond(w, r, snap, err)
	}
}

// Get handles GET /session.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.session.Snapshot())
}

// Start handles POST /session/start.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	activity, err := training.ParseActivity(req.Activity)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	snap, err := h.session.Start(r.Context(), activity)
	h.respond(w, r, snap, err)
}

// ChooseGoal handles POST /session/goal.
func (h *SessionHandler) ChooseGoal(w http.ResponseWriter, r *http.Request) {
	var req GoalRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	goal, err := training.ParseGoal(req.Goal)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	snap, err := h.session.ChooseGoal(r.Context(), goal)
	h.respond(w, r, snap, err)
}

// SelectCharacter handles POST /session/character.
func (h *SessionHandler) SelectCharacter(w http.ResponseWriter, r *http.Request) {
	var req SelectCharacterRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	snap, err := h.session.SelectCharacter(r.Context(), req.CharacterID)
	h.respond(w, r, snap, err)
}

// Answer handles POST /session/answer.
func (h *SessionHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	snap, err := h.session.Answer(r.Context(), req.Answer)
	h.respond(w, r, snap, err)
}

// DismissPopup handles POST /session/popups/{kind}/dismiss.
func (h *SessionHandler) DismissPopup(w http.ResponseWriter, r *http.Request) {
	raw, err := getPathParam(r, "kind")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	kind, ok := training.ParsePopupKind(raw)
	if !ok {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid popup kind")
		return
	}
	snap, err := h.session.DismissPopup(r.Context(), kind)
	h.respond(w, r, snap, err)
}

// Back handles POST /session/back.
func (h *SessionHandler) Back(w http.ResponseWriter, r *http.Request) {
	h.run(h.session.Back)(w, r)
}

// Acknowledge handles POST /session/acknowledge.
func (h *SessionHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	h.run(h.session.Acknowledge)(w, r)
}

// WritingDone handles POST /session/writing-done.
func (h *SessionHandler) WritingDone(w http.ResponseWriter, r *http.Request) {
	h.run(h.session.WritingDone)(w, r)
}

// Continue handles POST /session/continue.
func (h *SessionHandler) Continue(w http.ResponseWriter, r *http.Request) {
	h.run(h.session.Continue)(w, r)
}

// Reveal handles POST /session/reveal.
func (h *SessionHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	h.run(h.session.Reveal)(w, r)
}

// Finish handles POST /session/finish.
func (h *SessionHandler) Finish(w http.ResponseWriter, r *http.Request) {
	h.run(h.session.Finish)(w, r)
}

// RequestExit handles POST /session/exit.
func (h *SessionHandler) RequestExit(w http.ResponseWriter, r *http.Request) {
	h.run(h.session.RequestExit)(w, r)
}

// ConfirmExit handles POST /session/exit/confirm.
func (h *SessionHandler) ConfirmExit(w http.ResponseWriter, r *http.Request) {
	h.run(h.session.ConfirmExit)(w, r)
}

// CancelExit handles POST /session/exit/cancel.
func (h *SessionHandler) CancelExit(w http.ResponseWriter, r *http.Request) {
	h.run(h.session.CancelExit)(w, r)
}
