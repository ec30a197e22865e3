package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("organizations", "ok")
	m.ObserveFallback()
	m.ObserveOrganizerFailure("1", "Timeout")
	m.ObserveAggregate(time.Second, 3)
	m.ObserveLoad("applied", time.Now())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCollectors(t *testing.T) {
	m := New()
	m.ObserveRequest("organizations", "NotFound")
	m.ObserveRequest("organizers", "ok")
	m.ObserveFallback()
	m.ObserveOrganizerFailure("42", "Timeout")
	m.ObserveAggregate(250*time.Millisecond, 7)
	m.ObserveLoad("applied", time.Unix(1700000000, 0))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("organizations", "NotFound")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fallbacks))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.organizerFailures.WithLabelValues("42", "Timeout")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.mergedEvents))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(m.lastLoadTS))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "events_api_requests_total")
}
