// Package metrics exposes Prometheus counters for the extraction pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// JobsSubmitted counts accepted upload batches.
	JobsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sof_jobs_submitted_total",
		Help: "Number of extraction jobs accepted for processing.",
	})

	// JobsCompleted counts jobs that reached the completed state.
	JobsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sof_jobs_completed_total",
		Help: "Number of extraction jobs that completed.",
	})

	// JobsFailed counts jobs that reached the failed state.
	JobsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sof_jobs_failed_total",
		Help: "Number of extraction jobs that failed.",
	})

	// FilesProcessed counts files that yielded recognized text.
	FilesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sof_files_processed_total",
		Help: "Number of uploaded files run through recognition.",
	})

	// FilesSkipped counts files dropped mid-job for per-file errors.
	FilesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sof_files_skipped_total",
		Help: "Number of uploaded files skipped due to per-file errors.",
	})

	// RecordsExtracted counts structured event rows produced.
	RecordsExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sof_records_extracted_total",
		Help: "Number of structured event records extracted.",
	})
)
