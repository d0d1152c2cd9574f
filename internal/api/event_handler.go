package api

import (
	"net/http"

	"github.com/phrazzld/kanji-trainer/internal/api/shared"
	"github.com/phrazzld/kanji-trainer/internal/events"
)

// EventLog holds recent domain events.
type EventLog interface {
	Events() []*events.Event
}

// EventHandler serves GET /events, optionally filtered by ?type=.
type EventHandler struct {
	log EventLog
}

// NewEventHandler creates an EventHandler.
func NewEventHandler(log EventLog) *EventHandler {
	if log == nil {
		panic("event log cannot be nil")
	}
	return &EventHandler{log: log}
}

// List handles GET /events.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	want := r.URL.Query().Get("type")
	out := []*events.Event{}
	for _, evt := range h.log.Events() {
		if want == "" || evt.Type == want {
			out = append(out, evt)
		}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, EventsResponse{Events: out})
}
