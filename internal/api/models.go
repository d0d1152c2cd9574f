package api

import (
	"github.com/phrazzld/kanji-trainer/internal/domain"
	"github.com/phrazzld/kanji-trainer/internal/events"
	"github.com/phrazzld/kanji-trainer/internal/service/history"
	"github.com/phrazzld/kanji-trainer/internal/service/settings"
)

// StartRequest opens mode selection.
type StartRequest struct {
	Activity string `json:"activity" validate:"required"`
}

// GoalRequest picks what the session is played for.
type GoalRequest struct {
	Goal string `json:"goal" validate:"required"`
}

// SelectCharacterRequest picks the character to evolve.
type SelectCharacterRequest struct {
	CharacterID string `json:"character_id" validate:"required"`
}

// AnswerRequest submits a reading answer.
type AnswerRequest struct {
	Answer string `json:"answer" validate:"required"`
}

// FeedRequest feeds an owned character.
type FeedRequest struct {
	CharacterID string `json:"character_id" validate:"required"`
	FoodID      string `json:"food_id" validate:"required"`
}

// SetQuestionsRequest replaces the active question set. An empty list
// deselects everything.
type SetQuestionsRequest struct {
	IDs []string `json:"ids" validate:"dive,required"`
}

// RewardRequest adds a reward to the pool.
type RewardRequest struct {
	Reward string `json:"reward" validate:"required,max=100"`
}

// HistoryResponse is the history screen: every entry newest first and the
// per-day summary.
type HistoryResponse struct {
	Entries []domain.HistoryEntry `json:"entries"`
	Days    []history.Day         `json:"days"`
}

// InventoryItem is one food with its held count.
type InventoryItem struct {
	Food  domain.FoodItem `json:"food"`
	Count int             `json:"count"`
}

// InventoryResponse lists every food of the roster, held or not.
type InventoryResponse struct {
	Items []InventoryItem `json:"items"`
	Total int             `json:"total"`
}

// ActiveQuestionsResponse is the settings screen.
type ActiveQuestionsResponse struct {
	Active []string             `json:"active"`
	Grades []settings.GradeView `json:"grades"`
}

// EventsResponse lists recorded events, oldest first.
type EventsResponse struct {
	Events []*events.Event `json:"events"`
}
