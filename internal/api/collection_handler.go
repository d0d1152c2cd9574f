package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/kanji-trainer/internal/api/shared"
	"github.com/phrazzld/kanji-trainer/internal/domain"
	"github.com/phrazzld/kanji-trainer/internal/platform/logger"
	"github.com/phrazzld/kanji-trainer/internal/service/collection"
	"github.com/phrazzld/kanji-trainer/internal/service/feeding"
	"github.com/phrazzld/kanji-trainer/internal/service/history"
	"github.com/phrazzld/kanji-trainer/internal/service/inventory"
)

// FoodRoster lists every food of the roster.
type FoodRoster interface {
	All() []domain.FoodItem
}

// CollectionHandler serves the collection, history, inventory and feeding
// screens.
type CollectionHandler struct {
	ledger    collection.Ledger
	history   history.Log
	inventory inventory.Manager
	feeding   feeding.Service
	foods     FoodRoster
	logger    *slog.Logger
}

// NewCollectionHandler creates a CollectionHandler.
func NewCollectionHandler(
	ledger collection.Ledger,
	hist history.Log,
	inv inventory.Manager,
	feed feeding.Service,
	foods FoodRoster,
	logger *slog.Logger,
) *CollectionHandler {
	if ledger == nil || hist == nil || inv == nil || feed == nil || foods == nil {
		panic("collection handler dependencies cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CollectionHandler{
		ledger:    ledger,
		history:   hist,
		inventory: inv,
		feeding:   feed,
		foods:     foods,
		logger:    logger.With(slog.String("component", "collection_handler")),
	}
}

// GetCollection handles GET /collection.
func (h *CollectionHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	view, err := h.ledger.View(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, view)
}

// GetHistory handles GET /history.
func (h *CollectionHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.history.List(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	days, err := h.history.GroupByDate(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	if days == nil {
		days = []history.Day{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, HistoryResponse{Entries: entries, Days: days})
}

// GetInventory handles GET /inventory.
func (h *CollectionHandler) GetInventory(w http.ResponseWriter, r *http.Request) {
	inv, err := h.inventory.State(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	resp := InventoryResponse{Items: []InventoryItem{}}
	for _, food := range h.foods.All() {
		n := inv.Count(food.ID)
		resp.Items = append(resp.Items, InventoryItem{Food: food, Count: n})
		resp.Total += n
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// GetFoodOptions handles GET /characters/{id}/foods.
func (h *CollectionHandler) GetFoodOptions(w http.ResponseWriter, r *http.Request) {
	id, err := getPathParam(r, "id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	options, err := h.feeding.Options(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, options)
}

// Feed handles POST /feed.
func (h *CollectionHandler) Feed(w http.ResponseWriter, r *http.Request) {
	var req FeedRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	result, err := h.feeding.Feed(r.Context(), req.CharacterID, req.FoodID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	logger.FromContextOrDefault(r.Context(), h.logger).Debug("character fed",
		slog.String("character_id", req.CharacterID),
		slog.String("food_id", req.FoodID),
		slog.Int("remaining", result.Remaining))
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}
