// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"vehicle-search/internal/models"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	ParseTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vehicle_search_parse_total",
			Help: "Free-text queries turned into filter sets",
		},
	)

	FieldsDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vehicle_search_fields_detected_total",
			Help: "Filter fields detected by the parser",
		},
		[]string{"field"},
	)

	RelaxSteps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vehicle_search_relax_steps_total",
			Help: "Relaxation steps by outcome",
		},
		[]string{"step", "outcome"},
	)

	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vehicle_search_queries_total",
			Help: "Vehicle queries served, by status",
		},
		[]string{"status"},
	)

	QueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vehicle_search_query_duration_seconds",
			Help:    "Vehicle query latency",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
	)

	CacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vehicle_search_cache_total",
			Help: "Result cache lookups by result",
		},
		[]string{"result"},
	)
)

// Query statuses.
const (
	StatusOK    = "ok"
	StatusEmpty = "empty"
	StatusError = "error"
)

// RecordParse counts one parse and each field it produced. The limit is
// always present and not counted.
func RecordParse(f models.FilterSet) {
	ParseTotal.Inc()
	for _, field := range f.Fields() {
		if field == models.FieldLimit {
			continue
		}
		FieldsDetected.WithLabelValues(field).Inc()
	}
}

func RecordRelaxStep(step, outcome string) {
	RelaxSteps.WithLabelValues(step, outcome).Inc()
}

// RecordQuery observes one query. total is ignored when err is set.
func RecordQuery(elapsed time.Duration, total int, err error) {
	QueryDuration.Observe(elapsed.Seconds())
	switch {
	case err != nil:
		QueriesTotal.WithLabelValues(StatusError).Inc()
	case total == 0:
		QueriesTotal.WithLabelValues(StatusEmpty).Inc()
	default:
		QueriesTotal.WithLabelValues(StatusOK).Inc()
	}
}

func RecordCache(hit bool) {
	if hit {
		CacheTotal.WithLabelValues("hit").Inc()
		return
	}
	CacheTotal.WithLabelValues("miss").Inc()
}
