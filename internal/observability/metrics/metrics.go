package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/agrihope/backend/internal/domain"
	"github.com/agrihope/backend/internal/usecase"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "agrihope"

// AssistantMetrics owns a private registry with HTTP and assistant pipeline
// collectors
type AssistantMetrics struct {
	registry *prometheus.Registry
	service  string

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	queriesTotal            *prometheus.CounterVec
	matchesTotal            *prometheus.CounterVec
	matchedProducts         prometheus.Histogram
	answersTotal            *prometheus.CounterVec
	answerDuration          prometheus.Histogram
	generationAttemptsTotal *prometheus.CounterVec
	articleFallbacksTotal   prometheus.Counter
}

// New creates the collectors and registers them
func New(service string) *AssistantMetrics {
	registry := prometheus.NewRegistry()

	m := &AssistantMetrics{
		registry: registry,
		service:  service,
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total HTTP requests processed.",
			},
			[]string{"service", "method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"service", "method", "path"},
		),
		requestInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Subsystem:   "http",
				Name:        "in_flight_requests",
				Help:        "Number of in-flight HTTP requests.",
				ConstLabels: prometheus.Labels{"service": service},
			},
		),
		queriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "assistant",
				Name:      "queries_total",
				Help:      "Classified assistant queries by type.",
			},
			[]string{"service", "query_type"},
		),
		matchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "matcher",
				Name:      "matches_total",
				Help:      "Product matcher runs by answering tier.",
			},
			[]string{"service", "tier"},
		),
		matchedProducts: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Subsystem:   "matcher",
				Name:        "matched_products",
				Help:        "Distribution of products returned per match.",
				Buckets:     []float64{0, 1, 2, 3, 5, 10},
				ConstLabels: prometheus.Labels{"service": service},
			},
		),
		answersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "assistant",
				Name:      "answers_total",
				Help:      "Assistant answers by producing model, fallback included.",
			},
			[]string{"service", "model"},
		),
		answerDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Subsystem:   "assistant",
				Name:        "answer_duration_seconds",
				Help:        "End to end assistant pipeline duration in seconds.",
				Buckets:     []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40},
				ConstLabels: prometheus.Labels{"service": service},
			},
		),
		generationAttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "generation",
				Name:      "attempts_total",
				Help:      "Model attempts by outcome.",
			},
			[]string{"service", "model", "outcome"},
		),
		articleFallbacksTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "articles",
				Name:        "static_fallbacks_total",
				Help:        "Article fetch failures answered with the static article.",
				ConstLabels: prometheus.Labels{"service": service},
			},
		),
	}

	registry.MustRegister(
		m.requestTotal,
		m.requestDuration,
		m.requestInFlight,
		m.queriesTotal,
		m.matchesTotal,
		m.matchedProducts,
		m.answersTotal,
		m.answerDuration,
		m.generationAttemptsTotal,
		m.articleFallbacksTotal,
	)

	return m
}

// Handler serves the registry in the Prometheus text format
func (m *AssistantMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the private registry
func (m *AssistantMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// RequestStarted tracks an in-flight request; call the returned func when done
func (m *AssistantMetrics) RequestStarted() func() {
	m.requestInFlight.Inc()
	return m.requestInFlight.Dec
}

// ObserveRequest records one finished HTTP request
func (m *AssistantMetrics) ObserveRequest(method, path string, status int, duration time.Duration) {
	if path == "" {
		path = "unmatched"
	}
	m.requestTotal.WithLabelValues(m.service, method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(m.service, method, path).Observe(duration.Seconds())
}

// RecordClassification counts a classified query
func (m *AssistantMetrics) RecordClassification(queryType domain.QueryType) {
	m.queriesTotal.WithLabelValues(m.service, string(queryType)).Inc()
}

// RecordMatch counts a matcher run
func (m *AssistantMetrics) RecordMatch(tier usecase.MatchTier, count int) {
	m.matchesTotal.WithLabelValues(m.service, string(tier)).Inc()
	m.matchedProducts.Observe(float64(count))
}

// RecordAnswer counts a produced answer
func (m *AssistantMetrics) RecordAnswer(model string, duration time.Duration) {
	if model == "" {
		model = "unknown"
	}
	m.answersTotal.WithLabelValues(m.service, model).Inc()
	m.answerDuration.Observe(duration.Seconds())
}

// RecordArticleFallback counts a static article substitution
func (m *AssistantMetrics) RecordArticleFallback() {
	m.articleFallbacksTotal.Inc()
}

// RecordGenerationAttempt counts one model attempt
func (m *AssistantMetrics) RecordGenerationAttempt(model, outcome string) {
	m.generationAttemptsTotal.WithLabelValues(m.service, model, outcome).Inc()
}
