package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/kanji-trainer/internal/api/middleware"
)

// Handlers bundles every route handler.
type Handlers struct {
	Session    *SessionHandler
	Collection *CollectionHandler
	Settings   *SettingsHandler
	Rewards    *RewardHandler
	Events     *EventHandler
}

// NewRouter registers every route under /api.
func NewRouter(h Handlers, logger *slog.Logger) http.Handler {
	if h.Session == nil || h.Collection == nil || h.Settings == nil || h.Rewards == nil || h.Events == nil {
		panic("every handler must be set")
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewTraceMiddleware(logger))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health(logger))

		r.Route("/session", func(r chi.Router) {
			s := h.Session
			r.Get("/", s.Get)
			r.Post("/start", s.Start)
			r.Post("/goal", s.ChooseGoal)
			r.Post("/back", s.Back)
			r.Post("/character", s.SelectCharacter)
			r.Post("/answer", s.Answer)
			r.Post("/acknowledge", s.Acknowledge)
			r.Post("/writing-done", s.WritingDone)
			r.Post("/continue", s.Continue)
			r.Post("/reveal", s.Reveal)
			r.Post("/finish", s.Finish)
			r.Post("/exit", s.RequestExit)
			r.Post("/exit/confirm", s.ConfirmExit)
			r.Post("/exit/cancel", s.CancelExit)
			r.Post("/popups/{kind}/dismiss", s.DismissPopup)
		})

		r.Get("/collection", h.Collection.GetCollection)
		r.Get("/characters/{id}/foods", h.Collection.GetFoodOptions)
		r.Get("/history", h.Collection.GetHistory)
		r.Get("/inventory", h.Collection.GetInventory)
		r.Post("/feed", h.Collection.Feed)

		r.Get("/settings/questions", h.Settings.GetQuestions)
		r.Put("/settings/questions", h.Settings.SetQuestions)
		r.Post("/settings/questions/{id}/toggle", h.Settings.ToggleQuestion)
		r.Post("/settings/grades/{grade}/toggle", h.Settings.ToggleGrade)

		r.Get("/rewards", h.Rewards.List)
		r.Post("/rewards", h.Rewards.Add)
		r.Post("/rewards/reset", h.Rewards.ResetUsage)
		r.Delete("/rewards/{reward}", h.Rewards.Remove)

		r.Get("/events", h.Events.List)
	})

	return r
}

func health(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("failed to write health check response", slog.String("error", err.Error()))
		}
	}
}
