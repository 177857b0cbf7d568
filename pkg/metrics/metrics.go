package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MQ consumption latency in milliseconds.
	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
	)

	// Inference API call latency in milliseconds.
	InferenceCallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inference_call_latency_ms",
			Help:    "Inference service call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(100, 2, 10), // 100ms to ~100s
		},
		[]string{"endpoint", "status"},
	)

	// Database query latency in seconds.
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation", "table"},
	)

	// HTTP request latency in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// Checklists generated, by source.
	ChecklistGenerationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checklist_generation_count",
			Help: "Total number of checklists generated",
		},
		[]string{"source"}, // source: template, inference
	)

	// Task completion toggles.
	TaskToggleCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_toggle_count",
			Help: "Total number of task completion toggles",
		},
		[]string{"completed"}, // completed: true, false
	)

	// Queries slower than the configured threshold.
	SlowQueryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slow_query_count",
			Help: "Total number of slow database queries",
		},
		[]string{"command"},
	)
)

// RecordMQConsumeLatency records MQ consumption latency.
func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}

// RecordInferenceCallLatency records inference call latency.
func RecordInferenceCallLatency(endpoint, status string, duration time.Duration) {
	InferenceCallLatency.WithLabelValues(endpoint, status).Observe(float64(duration.Milliseconds()))
}

// RecordDBQueryDuration records database query latency.
func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// RecordHTTPRequestDuration records HTTP request latency.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// IncrementChecklistGeneration counts a generated checklist.
func IncrementChecklistGeneration(source string) {
	ChecklistGenerationCount.WithLabelValues(source).Inc()
}

// IncrementTaskToggle counts a task completion toggle.
func IncrementTaskToggle(completed bool) {
	if completed {
		TaskToggleCount.WithLabelValues("true").Inc()
	} else {
		TaskToggleCount.WithLabelValues("false").Inc()
	}
}

// IncrementSlowQuery counts a slow query by command tag.
func IncrementSlowQuery(command string) {
	SlowQueryCount.WithLabelValues(command).Inc()
}
