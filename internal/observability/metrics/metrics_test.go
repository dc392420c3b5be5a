package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/agrihope/backend/internal/domain"
	"github.com/agrihope/backend/internal/usecase"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ usecase.MetricsRecorder = (*AssistantMetrics)(nil)
)

func TestRecordClassificationAndMatch(t *testing.T) {
	m := New("test")

	m.RecordClassification(domain.QueryTypeProduct)
	m.RecordClassification(domain.QueryTypeProduct)
	m.RecordClassification(domain.QueryTypeAdvice)
	m.RecordMatch(usecase.TierCrop, 3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.queriesTotal.WithLabelValues("test", "product")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queriesTotal.WithLabelValues("test", "advice")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.matchesTotal.WithLabelValues("test", "crop")))
}

func TestRecordAnswerAndAttempts(t *testing.T) {
	m := New("test")

	m.RecordAnswer(usecase.FallbackModel, 10*time.Millisecond)
	m.RecordAnswer("", time.Millisecond)
	m.RecordGenerationAttempt("google/gemma-2-9b-it", "error")
	m.RecordArticleFallback()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.answersTotal.WithLabelValues("test", "fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.answersTotal.WithLabelValues("test", "unknown")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.generationAttemptsTotal.WithLabelValues("test", "google/gemma-2-9b-it", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.articleFallbacksTotal))
}

func TestObserveRequest(t *testing.T) {
	m := New("test")

	done := m.RequestStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestInFlight))
	done()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.requestInFlight))

	m.ObserveRequest(http.MethodPost, "/api/v1/assistant/query", 200, 5*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "", 404, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestTotal.WithLabelValues("test", "POST", "/api/v1/assistant/query", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestTotal.WithLabelValues("test", "GET", "unmatched", "404")))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New("test")
	m.RecordClassification(domain.QueryTypeGeneral)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "agrihope_assistant_queries_total")
}
