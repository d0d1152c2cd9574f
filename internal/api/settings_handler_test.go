package api_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/phrazzld/kanji-trainer/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func togglePath(id string) string {
	return "/api/settings/questions/" + url.PathEscape(id) + "/toggle"
}

func TestSettingsOverHTTP(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)

	state := decode[api.ActiveQuestionsResponse](t, a.do(http.MethodGet, "/api/settings/questions", ""))
	assert.Equal(t, []string{"一", "二"}, state.Active)
	require.Len(t, state.Grades, 2)
	assert.Equal(t, 1, state.Grades[0].Grade)
	assert.False(t, state.Grades[0].Selected, "山 is not active")

	w := a.do(http.MethodPost, "/api/settings/grades/1/toggle", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	state = decode[api.ActiveQuestionsResponse](t, w)
	assert.ElementsMatch(t, []string{"一", "二", "山"}, state.Active)
	assert.True(t, state.Grades[0].Selected)

	state = decode[api.ActiveQuestionsResponse](t, a.do(http.MethodPost, "/api/settings/grades/1/toggle", ""))
	assert.Empty(t, state.Active)

	state = decode[api.ActiveQuestionsResponse](t, a.do(http.MethodPost, togglePath("海"), ""))
	assert.Equal(t, []string{"海"}, state.Active)
	assert.True(t, state.Grades[1].Selected)

	state = decode[api.ActiveQuestionsResponse](t, a.do(http.MethodPost, togglePath("海"), ""))
	assert.Empty(t, state.Active)

	w = a.do(http.MethodPut, "/api/settings/questions", `{"ids":["山","山","一"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	state = decode[api.ActiveQuestionsResponse](t, w)
	assert.Equal(t, []string{"山", "一"}, state.Active)
}

func TestSettingsErrors(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{name: "unknown question", method: http.MethodPost, path: togglePath("猫"), wantStatus: http.StatusNotFound},
		{name: "grade is not a number", method: http.MethodPost, path: "/api/settings/grades/one/toggle", wantStatus: http.StatusBadRequest},
		{name: "set with unknown id", method: http.MethodPut, path: "/api/settings/questions", body: `{"ids":["猫"]}`, wantStatus: http.StatusNotFound},
		{name: "set with blank id", method: http.MethodPut, path: "/api/settings/questions", body: `{"ids":[""]}`, wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := a.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}

	state := decode[api.ActiveQuestionsResponse](t, a.do(http.MethodGet, "/api/settings/questions", ""))
	assert.Equal(t, []string{"一", "二"}, state.Active, "failed requests change nothing")
}
