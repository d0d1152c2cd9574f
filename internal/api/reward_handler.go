package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/kanji-trainer/internal/api/shared"
	"github.com/phrazzld/kanji-trainer/internal/domain"
	"github.com/phrazzld/kanji-trainer/internal/platform/logger"
	"github.com/phrazzld/kanji-trainer/internal/service/rewards"
)

// RewardHandler serves reward pool administration.
type RewardHandler struct {
	rewards rewards.Manager
	logger  *slog.Logger
}

// NewRewardHandler creates a RewardHandler.
func NewRewardHandler(mgr rewards.Manager, logger *slog.Logger) *RewardHandler {
	if mgr == nil {
		panic("reward manager cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RewardHandler{
		rewards: mgr,
		logger:  logger.With(slog.String("component", "reward_handler")),
	}
}

func (h *RewardHandler) respondWithPool(w http.ResponseWriter, r *http.Request, status int, pool domain.RewardPool, err error) {
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	if pool.Rewards == nil {
		pool.Rewards = []string{}
	}
	if pool.UsedRewards == nil {
		pool.UsedRewards = []string{}
	}
	shared.RespondWithJSON(w, r, status, pool)
}

// List handles GET /rewards.
func (h *RewardHandler) List(w http.ResponseWriter, r *http.Request) {
	pool, err := h.rewards.State(r.Context())
	h.respondWithPool(w, r, http.StatusOK, pool, err)
}

// Add handles POST /rewards.
func (h *RewardHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req RewardRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	pool, err := h.rewards.Add(r.Context(), req.Reward)
	if err == nil {
		logger.FromContextOrDefault(r.Context(), h.logger).Info("reward added",
			slog.Int("reward_count", len(pool.Rewards)))
	}
	h.respondWithPool(w, r, http.StatusCreated, pool, err)
}

// Remove handles DELETE /rewards/{reward}.
func (h *RewardHandler) Remove(w http.ResponseWriter, r *http.Request) {
	reward, err := getPathParam(r, "reward")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	pool, err := h.rewards.Remove(r.Context(), reward)
	h.respondWithPool(w, r, http.StatusOK, pool, err)
}

// ResetUsage handles POST /rewards/reset.
func (h *RewardHandler) ResetUsage(w http.ResponseWriter, r *http.Request) {
	pool, err := h.rewards.ResetUsage(r.Context())
	h.respondWithPool(w, r, http.StatusOK, pool, err)
}
