package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AskMetrics records how questions are answered. A nil *AskMetrics is valid
// and records nothing.
type AskMetrics struct {
	requests      *prometheus.CounterVec
	modelDuration *prometheus.HistogramVec
	modelFailures *prometheus.CounterVec
	queries       *prometheus.CounterVec
	ingested      *prometheus.GaugeVec
}

// NewAskMetrics registers the question-answering metrics on the provided registerer.
func NewAskMetrics(reg prometheus.Registerer) *AskMetrics {
	if reg == nil {
		return &AskMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ask_requests_total",
		Help: "Questions answered, by routing tier and outcome.",
	}, []string{"tier", "outcome"})
	modelDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "model_call_duration_seconds",
		Help:    "Latency of language model calls in seconds.",
		Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
	}, []string{"call"})
	modelFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "model_call_failures_total",
		Help: "Failed language model calls.",
	}, []string{"call"})
	queries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "query_executions_total",
		Help: "SQL executions by result status.",
	}, []string{"status"})
	ingested := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ingested_rows",
		Help: "Rows loaded into each table by the last ingestion.",
	}, []string{"table"})
	reg.MustRegister(requests, modelDuration, modelFailures, queries, ingested)
	return &AskMetrics{
		requests:      requests,
		modelDuration: modelDuration,
		modelFailures: modelFailures,
		queries:       queries,
		ingested:      ingested,
	}
}

// IncRequest counts an answered question.
func (m *AskMetrics) IncRequest(tier, outcome string) {
	if m == nil || m.requests == nil {
		return
	}
	m.requests.WithLabelValues(normalizeLabel(tier), normalizeLabel(outcome)).Inc()
}

// ObserveModelCall records the latency of a model call and counts failures.
func (m *AskMetrics) ObserveModelCall(call string, duration time.Duration, err error) {
	if m == nil || m.modelDuration == nil {
		return
	}
	call = normalizeLabel(call)
	m.modelDuration.WithLabelValues(call).Observe(duration.Seconds())
	if err != nil {
		m.modelFailures.WithLabelValues(call).Inc()
	}
}

// IncQuery counts a SQL execution by status (ok, empty, failed, rejected).
func (m *AskMetrics) IncQuery(status string) {
	if m == nil || m.queries == nil {
		return
	}
	m.queries.WithLabelValues(normalizeLabel(status)).Inc()
}

// SetIngested records how many rows ingestion wrote to table.
func (m *AskMetrics) SetIngested(table string, rows int) {
	if m == nil || m.ingested == nil {
		return
	}
	m.ingested.WithLabelValues(normalizeLabel(table)).Set(float64(rows))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
