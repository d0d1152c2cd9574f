package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/kanji-trainer/internal/api/shared"
	"github.com/phrazzld/kanji-trainer/internal/platform/logger"
	"github.com/phrazzld/kanji-trainer/internal/service/settings"
)

// SettingsHandler serves the active question set.
type SettingsHandler struct {
	settings settings.Service
	logger   *slog.Logger
}

// NewSettingsHandler creates a SettingsHandler.
func NewSettingsHandler(svc settings.Service, logger *slog.Logger) *SettingsHandler {
	if svc == nil {
		panic("settings service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsHandler{
		settings: svc,
		logger:   logger.With(slog.String("component", "settings_handler")),
	}
}

func (h *SettingsHandler) respondWithState(w http.ResponseWriter, r *http.Request, active []string) {
	grades, err := h.settings.Grades(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	if active == nil {
		active = []string{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ActiveQuestionsResponse{Active: active, Grades: grades})
}

// GetQuestions handles GET /settings/questions.
func (h *SettingsHandler) GetQuestions(w http.ResponseWriter, r *http.Request) {
	active, err := h.settings.Active(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	h.respondWithState(w, r, active)
}

// SetQuestions handles PUT /settings/questions.
func (h *SettingsHandler) SetQuestions(w http.ResponseWriter, r *http.Request) {
	var req SetQuestionsRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	active, err := h.settings.Set(r.Context(), req.IDs)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	logger.FromContextOrDefault(r.Context(), h.logger).Info("active questions replaced",
		slog.Int("active_count", len(active)))
	h.respondWithState(w, r, active)
}

// ToggleQuestion handles POST /settings/questions/{id}/toggle.
func (h *SettingsHandler) ToggleQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := getPathParam(r, "id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	active, err := h.settings.ToggleQuestion(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	h.respondWithState(w, r, active)
}

// ToggleGrade handles POST /settings/grades/{grade}/toggle.
func (h *SettingsHandler) ToggleGrade(w http.ResponseWriter, r *http.Request) {
	grade, err := getPathInt(r, "grade")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	active, err := h.settings.ToggleGrade(r.Context(), grade)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	h.respondWithState(w, r, active)
}
