// Package metrics provides Prometheus metrics for the batch scoring host.
// It covers batch throughput, pipeline latency, and failure counts exposed
// via the /metrics endpoint. Model-health metrics (drift, fairness, AUC)
// are not exported here; those belong to the per-batch report.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the scoring host.
type Metrics struct {
	BatchesScored   prometheus.Counter   // Total batches scored successfully
	RecordsScored   prometheus.Counter   // Total records scored across all batches
	MetricsReports  prometheus.Counter   // Total metrics reports assembled
	BatchFailures   prometheus.Counter   // Total batches aborted by a fatal error
	ScoreDuration   prometheus.Histogram // Wall time of score() per batch
	MetricsDuration prometheus.Histogram // Wall time of metrics() per batch
	DashboardPushes prometheus.Counter   // Total reports pushed to the dashboard
	DashboardErrors prometheus.Counter   // Total failed dashboard pushes
}

// New creates and registers all metrics with the default registry.
func New() *Metrics {
	return NewWithRegistry(nil)
}

// NewWithRegistry registers the metrics with the given registry, or the
// default one when reg is nil. Tests pass their own registry so parallel
// fixtures do not collide.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	if reg == nil {
		factory = promauto.With(prometheus.DefaultRegisterer)
	}

	return &Metrics{
		BatchesScored: factory.NewCounter(prometheus.CounterOpts{
			Name: "creditmon_batches_scored_total",
			Help: "Total number of batches scored successfully",
		}),
		RecordsScored: factory.NewCounter(prometheus.CounterOpts{
			Name: "creditmon_records_scored_total",
			Help: "Total number of records scored across all batches",
		}),
		MetricsReports: factory.NewCounter(prometheus.CounterOpts{
			Name: "creditmon_metrics_reports_total",
			Help: "Total number of metrics reports assembled",
		}),
		BatchFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "creditmon_batch_failures_total",
			Help: "Total number of batches aborted by a fatal error",
		}),
		ScoreDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "creditmon_score_duration_seconds",
			Help:    "Wall time of batch scoring",
			Buckets: prometheus.DefBuckets,
		}),
		MetricsDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "creditmon_metrics_duration_seconds",
			Help:    "Wall time of metrics-report assembly",
			Buckets: prometheus.DefBuckets,
		}),
		DashboardPushes: factory.NewCounter(prometheus.CounterOpts{
			Name: "creditmon_dashboard_pushes_total",
			Help: "Total number of reports pushed to the dashboard",
		}),
		DashboardErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "creditmon_dashboard_push_errors_total",
			Help: "Total number of failed dashboard pushes",
		}),
	}
}
