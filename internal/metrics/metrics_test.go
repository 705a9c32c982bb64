package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_ObserveOperation(t *testing.T) {
	m := New()
	m.ObserveOperation("book_now", "ok")
	m.ObserveOperation("book_now", "ok")
	m.ObserveOperation("book_now", "not_available")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("book_now", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("book_now", "not_available")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveOperation("end_session", "ok")
		m.ObserveSession(12)
		m.ObserveEvent("session_ended")
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveEvent("session_started")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `boothnow_feed_events_total{kind="session_started"} 1`)
}
