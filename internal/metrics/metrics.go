// Package metrics defines Prometheus metrics for document classification.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	DocumentsClassified = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docclass_documents_classified_total",
			Help: "Computed classifications by category and access level",
		},
		[]string{"category", "access_level"},
	)

	DocumentsWritten = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "docclass_documents_written_total",
			Help: "Documents acknowledged by the index",
		},
	)

	DocumentsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "docclass_documents_failed_total",
			Help: "Documents the index did not acknowledge",
		},
	)

	BatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docclass_batches_total",
			Help: "Batch writes by result (ok, partial, failed)",
		},
		[]string{"result"},
	)

	IndexCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docclass_index_call_duration_seconds",
			Help:    "Index client call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "operation", "result"},
	)

	RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docclass_runs_total",
			Help: "Classification runs by terminal status",
		},
		[]string{"status", "scope"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docclass_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docclass_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		DocumentsClassified, DocumentsWritten, DocumentsFailed,
		BatchesTotal, IndexCallDuration, RunsTotal,
		RequestDuration, RequestsTotal,
	)
}

// BatchResult labels a batch outcome for BatchesTotal.
func BatchResult(succeeded, failed int) string {
	switch {
	case failed == 0:
		return "ok"
	case succeeded == 0:
		return "failed"
	default:
		return "partial"
	}
}
