package api_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/phrazzld/kanji-trainer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewardsOverHTTP(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)

	pool := decode[domain.RewardPool](t, a.do(http.MethodGet, "/api/rewards", ""))
	assert.Equal(t, []string{"ice cream", "movie night"}, pool.Rewards)
	assert.Empty(t, pool.UsedRewards)

	w := a.do(http.MethodPost, "/api/rewards", `{"reward":"ゲーム30分"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	pool = decode[domain.RewardPool](t, w)
	assert.Contains(t, pool.Rewards, "ゲーム30分")

	w = a.do(http.MethodPost, "/api/rewards", `{"reward":"ゲーム30分"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Reward already exists", errorOf(t, w).Error)

	w = a.do(http.MethodPost, "/api/rewards", `{"reward":"   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Reward cannot be empty", errorOf(t, w).Error)

	w = a.do(http.MethodDelete, "/api/rewards/"+url.PathEscape("movie night"), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	pool = decode[domain.RewardPool](t, w)
	assert.Equal(t, []string{"ice cream", "ゲーム30分"}, pool.Rewards)

	w = a.do(http.MethodDelete, "/api/rewards/"+url.PathEscape("movie night"), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodPost, "/api/rewards/reset", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[domain.RewardPool](t, w).UsedRewards)
}
