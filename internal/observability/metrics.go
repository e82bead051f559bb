package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqltranslator_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sqltranslator_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	connectAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqltranslator_connect_attempts_total",
			Help: "Total number of database connect attempts by dialect and outcome.",
		},
		[]string{"dialect", "outcome"},
	)

	turnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqltranslator_turns_total",
			Help: "Total number of conversation turns by outcome.",
		},
		[]string{"outcome"},
	)

	generationLatencyMs = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sqltranslator_generation_latency_ms",
			Help:    "Language model SQL generation latency in milliseconds.",
			Buckets: []float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000},
		},
	)

	queryLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sqltranslator_query_latency_ms",
			Help:    "Generated query execution latency in milliseconds.",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2000, 5000, 10000},
		},
		[]string{"dialect"},
	)

	exportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqltranslator_exports_total",
			Help: "Total number of result exports by status.",
		},
		[]string{"status"},
	)
)

// Turn outcomes.
const (
	TurnAnswered        = "answered"
	TurnExecutionError  = "execution_error"
	TurnGenerationError = "generation_error"
	TurnSchemaError     = "schema_error"
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDurationSeconds,
		connectAttemptsTotal,
		turnsTotal,
		generationLatencyMs,
		queryLatencyMs,
		exportsTotal,
	)
}

func ObserveConnect(dialect string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	connectAttemptsTotal.WithLabelValues(dialect, outcome).Inc()
}

func ObserveTurn(outcome string) {
	turnsTotal.WithLabelValues(outcome).Inc()
}

func ObserveGeneration(elapsed time.Duration) {
	generationLatencyMs.Observe(float64(elapsed.Milliseconds()))
}

func ObserveQuery(dialect string, elapsed time.Duration) {
	queryLatencyMs.WithLabelValues(dialect).Observe(float64(elapsed.Milliseconds()))
}

func ObserveExport(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	exportsTotal.WithLabelValues(status).Inc()
}
