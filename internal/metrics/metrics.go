package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dupe_checker_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dupe_checker_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dupe_checker_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Pipeline metrics
var (
	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dupe_checker_pipeline_runs_total",
			Help: "Total number of pipeline runs by outcome",
		},
		[]string{"pipeline", "outcome"}, // outcome: completed, cancelled, failed
	)

	PipelineRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dupe_checker_pipeline_rejected_total",
			Help: "Start requests rejected because the pipeline was busy or had nothing to do",
		},
		[]string{"pipeline", "reason"},
	)

	PipelineRunning = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dupe_checker_pipeline_running",
			Help: "Whether the pipeline is currently running (1 = running, 0 = idle)",
		},
		[]string{"pipeline"},
	)

	PipelineLastRunDuration = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dupe_checker_pipeline_last_run_duration_seconds",
			Help: "Duration of the last pipeline run in seconds",
		},
		[]string{"pipeline"},
	)
)

// Import metrics
var (
	ImportRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dupe_checker_import_rows_total",
			Help: "CSV rows read by the import pipeline",
		},
		[]string{"result"}, // accepted, skipped
	)

	DuplicatesLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dupe_checker_duplicates_loaded",
			Help: "Number of duplicates in the current session",
		},
	)

	ProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dupe_checker_probes_total",
			Help: "Duration probes by status",
		},
		[]string{"status"}, // success, error, not_found
	)

	ProbeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dupe_checker_probe_duration_seconds",
			Help:    "Time spent running ffprobe",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)
)

// Preview metrics
var (
	ThumbnailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dupe_checker_thumbnails_total",
			Help: "Preview thumbnails by kind and status",
		},
		[]string{"kind", "status"}, // status: success, error_extract, error_render, skipped_missing
	)

	ExtractDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dupe_checker_extract_duration_seconds",
			Help:    "Time spent running ffmpeg frame extraction",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)
)

// Filesystem retry metrics
var (
	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dupe_checker_filesystem_retry_attempts_total",
			Help: "Retries after NFS stale file handle errors",
		},
		[]string{"operation"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dupe_checker_filesystem_retry_success_total",
			Help: "Operations that succeeded after at least one retry",
		},
		[]string{"operation"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dupe_checker_filesystem_retry_failures_total",
			Help: "Operations that failed after exhausting retries",
		},
		[]string{"operation"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dupe_checker_filesystem_stale_errors_total",
			Help: "NFS stale file handle errors observed",
		},
		[]string{"operation"},
	)
)

// View metrics
var (
	EventsDispatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dupe_checker_events_dispatched_total",
			Help: "Pipeline events applied to the view",
		},
		[]string{"type"},
	)

	EventQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dupe_checker_event_queue_depth",
			Help: "Events waiting to be applied to the view",
		},
	)

	WebsocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dupe_checker_websocket_clients",
			Help: "Connected live view clients",
		},
	)
)
