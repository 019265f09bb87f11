package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics(kinds []string) {
	for _, p := range []string{"import", "preview"} {
		for _, outcome := range []string{"completed", "cancelled", "failed"} {
			PipelineRunsTotal.WithLabelValues(p, outcome)
		}
		for _, reason := range []string{"already_running", "no_duplicates"} {
			PipelineRejectedTotal.WithLabelValues(p, reason)
		}
		PipelineRunning.WithLabelValues(p).Set(0)
		PipelineLastRunDuration.WithLabelValues(p)
	}

	for _, result := range []string{"accepted", "skipped"} {
		ImportRowsTotal.WithLabelValues(result)
	}

	for _, status := range []string{"success", "error", "not_found"} {
		ProbesTotal.WithLabelValues(status)
	}

	for _, kind := range kinds {
		for _, status := range []string{"success", "error_extract", "error_render", "skipped_missing"} {
			ThumbnailsTotal.WithLabelValues(kind, status)
		}
	}

	for _, op := range []string{"stat", "open"} {
		FilesystemRetryAttempts.WithLabelValues(op)
		FilesystemRetrySuccess.WithLabelValues(op)
		FilesystemRetryFailures.WithLabelValues(op)
		FilesystemStaleErrors.WithLabelValues(op)
	}
}
