package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	c := New()
	c.Mutated("watchlist")
	c.Mutated("watchlist")
	c.PersistFailed("settings")
	c.AlertSent("log")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.mutations.WithLabelValues("watchlist")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.persistFailures.WithLabelValues("settings")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.alertsSent.WithLabelValues("log")))
}

func TestNilCollectorsAreNoops(t *testing.T) {
	var c *Collectors
	c.Mutated("x")
	c.PersistFailed("x")
	c.AlertSent("x")
	c.ObserveRequest("/", http.MethodGet, 200, time.Millisecond)
}

func TestHandlerExposesRequests(t *testing.T) {
	c := New()
	c.ObserveRequest("/api/trades", http.MethodGet, 200, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `politrades_http_requests_total{method="GET",route="/api/trades",status="200"} 1`))
}
