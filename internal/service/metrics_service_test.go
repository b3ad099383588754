package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/wiki-drafts/internal/models"
)

func TestMetricsServiceCounters(t *testing.T) {
	m := NewMetricsService()

	m.RecordDraftOutcome("save", models.DraftInserted)
	m.RecordDraftOutcome("save", models.DraftInserted)
	m.RecordDraftOutcome("refuse", models.DraftDenied)
	m.RecordCacheLookup(true)
	m.RecordCacheLookup(false)
	m.AddExpiredDrafts(3)
	m.AddExpiredDrafts(-1)
	m.ObserveDBQuery("drafts.get", time.Millisecond)
	m.ObserveHTTPRequest(http.MethodGet, "/drafts", http.StatusOK, time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.draftOutcomes.WithLabelValues("save", "inserted")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.draftOutcomes.WithLabelValues("refuse", "denied")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.expiredDrafts))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.requestTotal.WithLabelValues("GET", "/drafts", "200")))
}

func TestMetricsServiceHandler(t *testing.T) {
	m := NewMetricsService()
	m.RecordDraftOutcome("discard", models.DraftDiscarded)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `draft_operations_total{operation="discard",outcome="discarded"} 1`)

	var missing *MetricsService
	w = httptest.NewRecorder()
	missing.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	missing.RecordDraftOutcome("save", models.DraftInserted)
}
