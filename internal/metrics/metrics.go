package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qgate_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "qgate_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)

	// Evaluation metrics
	EvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qgate_evaluations_total",
			Help: "Total number of condition evaluations by result level",
		},
		[]string{"level"},
	)

	EvaluationErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qgate_evaluation_errors_total",
			Help: "Total number of failed condition evaluations by error kind",
		},
		[]string{"kind"}, // kind: unsupported_type, threshold_parse, unsupported_operator
	)

	GateEvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qgate_gate_evaluations_total",
			Help: "Total number of gate evaluations by verdict level",
		},
		[]string{"level"},
	)

	// Resync metrics
	ResyncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qgate_resync_runs_total",
			Help: "Total number of resync triggers",
		},
		[]string{"status"}, // status: success, failed
	)

	ResyncTasksSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "qgate_resync_tasks_submitted_total",
			Help: "Total number of reindex tasks submitted to the queue",
		},
	)

	ResyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "qgate_resync_duration_seconds",
			Help:    "Duration of resync runs in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	// Notifier metrics
	NotifierPublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qgate_notifier_publish_total",
			Help: "Total number of task notifications published to Kafka",
		},
		[]string{"status"}, // status: success, failed
	)

	NotifierPublishRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "qgate_notifier_publish_retries_total",
			Help: "Total number of Kafka publish retries",
		},
	)

	NotifierPublishDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "qgate_notifier_publish_duration_seconds",
			Help:    "Duration of Kafka publish calls in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	// Worker pool metrics
	WorkerProcessedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "qgate_worker_notifications_total",
			Help: "Total number of task notifications flushed by the worker pool",
		},
	)

	WorkerFailedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "qgate_worker_failed_total",
			Help: "Total number of task notifications that failed to flush",
		},
	)

	WorkerQueueSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "qgate_worker_queue_size",
			Help: "Current number of task notifications waiting in the queue",
		},
	)

	WorkerQueueCapacity = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "qgate_worker_queue_capacity",
			Help: "Capacity of the task notification queue",
		},
	)

	// Error tracking
	PanicsRecovered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qgate_panics_recovered_total",
			Help: "Total number of panics recovered",
		},
		[]string{"location"},
	)
)
