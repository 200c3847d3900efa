package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"politrades/internal/dataset"
	"politrades/internal/metrics"
	"politrades/internal/models"
	"politrades/internal/query"
	"politrades/internal/state"
)

var now = time.Date(2026, time.March, 12, 15, 30, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type harness struct {
	handler http.Handler
	stores  *state.Stores
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	snap, err := dataset.Load(context.Background(), dataset.NewMock(now, time.UTC), zerolog.Nop())
	require.NoError(t, err)

	stores := state.Open(context.Background(), state.Options{ManualToastDismiss: true}, zerolog.Nop())
	t.Cleanup(func() { _ = stores.Close(context.Background()) })

	srv := New(Deps{
		Engine:  query.New(snap, time.UTC),
		Stores:  stores,
		Metrics: metrics.New(),
		Now:     func() time.Time { return now },
	}, zerolog.Nop())
	return &harness{handler: srv.Handler(), stores: stores}
}

func (h *harness) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestSearchTickers(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/api/tickers?q=nvda", "")
	require.Equal(t, http.StatusOK, rec.Code)
	tickers := decode[[]models.Ticker](t, rec)
	require.Len(t, tickers, 1)
	assert.Equal(t, "NVDA", tickers[0].Symbol)

	rec = h.do(t, http.MethodGet, "/api/tickers?q=", "")
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestLookupMissesReturn404(t *testing.T) {
	h := newHarness(t)

	for _, path := range []string{
		"/api/politicians/nobody",
		"/api/politicians/nobody/trades",
		"/api/tickers/ZZZZ",
		"/api/tickers/ZZZZ/trades",
		"/api/trades/t-999",
		"/api/trades/t-999/related",
		"/api/nowhere",
	} {
		rec := h.do(t, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "not found", path)
	}
}

func TestPoliticianTrades(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/api/politicians/p-hale/trades", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Trade](t, rec), 4)
}

func TestMovers(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/api/trades/movers?n=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	trades := decode[[]models.Trade](t, rec)
	require.Len(t, trades, 2)
	assert.Equal(t, "t-008", trades[0].ID)

	rec = h.do(t, http.MethodGet, "/api/tickers/movers?n=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/trades/t-001/related?n=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Trade](t, rec), 2)
}

func TestFeed(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/api/trades?type=buy&period=today", "")
	require.Equal(t, http.StatusOK, rec.Code)
	groups := decode[[]query.DayGroup](t, rec)
	require.Len(t, groups, 1)
	assert.Equal(t, "Today", groups[0].Title)
	assert.Len(t, groups[0].Trades, 2)

	rec = h.do(t, http.MethodGet, "/api/trades?period=decade", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPatchSettings(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPatch, "/api/settings", `{"language":"fr-CA","alertThreshold":"100000"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	settings := h.stores.Preferences.Snapshot()
	assert.Equal(t, models.LanguageFrench, settings.Language)
	assert.Equal(t, "100000", settings.AlertThreshold.String())

	rec = h.do(t, http.MethodPatch, "/api/settings", `{"language":"en","alertThreshold":-5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, models.LanguageFrench, h.stores.Preferences.Snapshot().Language, "rejected patch must not apply")

	rec = h.do(t, http.MethodPatch, "/api/settings", `{"language":"xx-invalid-tag-!"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGateFollowsOnboarding(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/api/gate", "")
	assert.JSONEq(t, `{"route":"onboarding"}`, rec.Body.String())

	h.do(t, http.MethodPatch, "/api/settings", `{"hasCompletedOnboarding":true}`)
	rec = h.do(t, http.MethodGet, "/api/gate", "")
	assert.JSONEq(t, `{"route":"main"}`, rec.Body.String())
}

func TestWatchlistMutations(t *testing.T) {
	h := newHarness(t)

	for range 2 {
		rec := h.do(t, http.MethodPut, "/api/watchlist/politicians/p-hale", "")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, []string{"p-hale"}, h.stores.Watchlist.Snapshot().FollowedPoliticians)

	ui := h.stores.UI.Snapshot()
	assert.True(t, ui.Toast.Visible)
	assert.Equal(t, state.ToastSuccess, ui.Toast.Type)

	rec := h.do(t, http.MethodDelete, "/api/watchlist/politicians/p-ortiz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"p-hale"}, h.stores.Watchlist.Snapshot().FollowedPoliticians)

	rec = h.do(t, http.MethodPut, "/api/watchlist/politicians/nobody", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(t, http.MethodPut, "/api/watchlist/sectors/Energy", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = h.do(t, http.MethodPut, "/api/watchlist/sectors/Astrology", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/watchlist/feed", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var count int
	for _, g := range decode[[]query.DayGroup](t, rec) {
		count += len(g.Trades)
	}
	assert.Equal(t, 7, count)

	h.do(t, http.MethodDelete, "/api/watchlist/sectors/Energy", "")
	assert.Empty(t, h.stores.Watchlist.Snapshot().FollowedSectors)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t)

	h.do(t, http.MethodGet, "/healthz", "")
	rec := h.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `politrades_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}
