// Package metrics provides Prometheus instrumentation for dupe-checker.
//
// All metrics are prefixed with "dupe_checker_" and served by the metrics
// server started from the serve command.
//
// # Metric Categories
//
// ## HTTP Metrics
//   - HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight
//
// ## Pipeline Metrics
//   - PipelineRunsTotal: runs by pipeline ("import", "preview") and outcome
//   - PipelineRejectedTotal: start requests rejected while busy or empty
//   - PipelineRunning: 1 while a pipeline worker is active
//   - PipelineLastRunDuration: wall time of the last run
//
// ## Import Metrics
//   - ImportRowsTotal: rows accepted or skipped as malformed
//   - DuplicatesLoaded: size of the current duplicate sequence
//   - ProbesTotal, ProbeDuration: ffprobe calls
//
// ## Preview Metrics
//   - ThumbnailsTotal: thumbnails by media kind and status
//   - ExtractDuration: ffmpeg frame extraction time
//
// ## Filesystem Metrics
//   - FilesystemRetry*: NFS stale handle retries for stat and open
//
// ## View Metrics
//   - EventsDispatchedTotal, EventQueueDepth, WebsocketClients
package metrics
