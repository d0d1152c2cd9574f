package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/phrazzld/kanji-trainer/internal/api"
	"github.com/phrazzld/kanji-trainer/internal/api/shared"
	"github.com/phrazzld/kanji-trainer/internal/domain"
	"github.com/phrazzld/kanji-trainer/internal/domain/progression"
	"github.com/phrazzld/kanji-trainer/internal/events"
	"github.com/phrazzld/kanji-trainer/internal/random"
	"github.com/phrazzld/kanji-trainer/internal/schedule"
	"github.com/phrazzld/kanji-trainer/internal/service/collection"
	"github.com/phrazzld/kanji-trainer/internal/service/feeding"
	"github.com/phrazzld/kanji-trainer/internal/service/history"
	"github.com/phrazzld/kanji-trainer/internal/service/inventory"
	"github.com/phrazzld/kanji-trainer/internal/service/rewards"
	"github.com/phrazzld/kanji-trainer/internal/service/settings"
	"github.com/phrazzld/kanji-trainer/internal/service/training"
	"github.com/phrazzld/kanji-trainer/internal/store"
	"github.com/phrazzld/kanji-trainer/internal/testutils"
	"github.com/stretchr/testify/require"
)

var timing = training.DefaultTiming()

type testAPI struct {
	t      *testing.T
	router http.Handler
	clock  *schedule.Manual
	slots  *store.Slots
}

// newTestAPI wires the full service stack over memory slots and a manual
// clock, with one question per session.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	log := testutils.DiscardLogger()
	c := testutils.NewTestContent(t)
	slots := testutils.NewMemorySlots(t, store.Defaults{
		ActiveQuestionIDs: []string{"一", "二"},
		Rewards:           []string{"ice cream", "movie night"},
	})
	clock := schedule.NewManual(testutils.DefaultTime)

	recorder := events.NewRecorder(100)
	emitter := events.NewInMemoryEventEmitter(log)
	emitter.RegisterHandler(recorder)

	prog := progression.NewDefaultService()
	ledger := collection.NewLedger(slots, c.Roster, prog, clock, log)
	inv := inventory.NewManager(slots, log)
	rw := rewards.NewManager(slots, random.MustNew(testutils.TestSeed), log)
	hist := history.NewLog(slots, clock, log)
	active := settings.NewService(slots, c.Bank, log)
	feed := feeding.NewService(ledger, inv, c.Roster, c.Foods, c.Messages, emitter, log)

	machine := training.New(training.Deps{
		Questions:   c.Bank,
		Active:      active,
		Ledger:      ledger,
		Roster:      c.Roster,
		Foods:       c.Foods,
		Inventory:   inv,
		Rewards:     rw,
		History:     hist,
		Messages:    c.Messages,
		Store:       slots,
		Progression: prog,
		Scheduler:   clock,
		Emitter:     emitter,
		Logger:      log,
	}, training.Config{QuestionCount: 1, Policy: training.PolicySingle, Timing: timing})

	router := api.NewRouter(api.Handlers{
		Session:    api.NewSessionHandler(machine, log),
		Collection: api.NewCollectionHandler(ledger, hist, inv, feed, c.Foods, log),
		Settings:   api.NewSettingsHandler(active, log),
		Rewards:    api.NewRewardHandler(rw, log),
		Events:     api.NewEventHandler(recorder),
	}, log)

	return &testAPI{t: t, router: router, clock: clock, slots: slots}
}

func (a *testAPI) do(method, path, body string) *httptest.ResponseRecorder {
	a.t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// session performs a session request that must succeed and decodes the
// snapshot.
func (a *testAPI) session(method, path, body string) training.Snapshot {
	a.t.Helper()
	w := a.do(method, path, body)
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	var snap training.Snapshot
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &snap))
	return snap
}

func (a *testAPI) own(records ...domain.CollectedCharacter) {
	a.t.Helper()
	_, err := a.slots.UpdateCollected(context.Background(), func([]domain.CollectedCharacter) ([]domain.CollectedCharacter, error) {
		return records, nil
	})
	require.NoError(a.t, err)
}

func (a *testAPI) stock(foodIDs ...string) {
	a.t.Helper()
	_, err := a.slots.UpdateInventory(context.Background(), func(inv domain.Inventory) (domain.Inventory, error) {
		for _, id := range foodIDs {
			inv = inv.Granted(id)
		}
		return inv, nil
	})
	require.NoError(a.t, err)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	return decode[shared.ErrorResponse](t, w)
}
