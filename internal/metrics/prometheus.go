package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder is the Prometheus implementation of the Recorder interface.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	taskRunsTotal       *prometheus.CounterVec
	taskDurationSeconds *prometheus.HistogramVec

	transitionsTotal   *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec

	activeLeases            prometheus.Gauge
	staleLeases             prometheus.Gauge
	forcedReleases          prometheus.Counter
	expiredBacklog          prometheus.Gauge
	reconciliationAnomalies *prometheus.GaugeVec
}

// NewPrometheusRecorder creates a new PrometheusRecorder with its own registry.
func NewPrometheusRecorder() *PrometheusRecorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &PrometheusRecorder{
		registry: registry,
		taskRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auctiond_task_runs_total",
			Help: "Total number of scheduled task runs by outcome.",
		}, []string{"task_name", "status"}),
		taskDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "auctiond_task_duration_seconds",
			Help:    "Duration of scheduled task runs.",
			Buckets: prometheus.DefBuckets,
		}, []string{"task_name", "status"}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auctiond_status_transitions_total",
			Help: "Total number of application status transitions by outcome.",
		}, []string{"outcome"}),
		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auctiond_notifications_total",
			Help: "Total number of notification dispatch attempts by outcome.",
		}, []string{"outcome"}),
		activeLeases: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "auctiond_governor_active_leases",
			Help: "Current number of outstanding connection leases.",
		}),
		staleLeases: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "auctiond_governor_stale_leases",
			Help: "Current number of leases past the stale threshold.",
		}),
		forcedReleases: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auctiond_governor_forced_releases_total",
			Help: "Total number of leases force-released by the governor.",
		}),
		expiredBacklog: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "auctiond_auction_expired_backlog",
			Help: "Applications past their auction deadline still awaiting transition.",
		}),
		reconciliationAnomalies: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "auctiond_reconciliation_anomalies",
			Help: "Inconsistencies found by the last reconciliation pass, by kind.",
		}, []string{"kind"}),
	}

	registry.MustRegister(
		r.taskRunsTotal,
		r.taskDurationSeconds,
		r.transitionsTotal,
		r.notificationsTotal,
		r.activeLeases,
		r.staleLeases,
		r.forcedReleases,
		r.expiredBacklog,
		r.reconciliationAnomalies,
	)

	return r
}

// Handler returns the HTTP handler serving the exposition endpoint.
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// RecordTaskRun records one completed run of a scheduled task.
func (r *PrometheusRecorder) RecordTaskRun(taskName string, status TaskStatus, duration time.Duration) {
	r.taskRunsTotal.WithLabelValues(taskName, string(status)).Inc()
	r.taskDurationSeconds.WithLabelValues(taskName, string(status)).Observe(duration.Seconds())
}

// RecordTransitions records the outcome counts of one engine sweep.
func (r *PrometheusRecorder) RecordTransitions(completed, ignored, failed int) {
	r.transitionsTotal.WithLabelValues("completed").Add(float64(completed))
	r.transitionsTotal.WithLabelValues("ignored").Add(float64(ignored))
	r.transitionsTotal.WithLabelValues("failed").Add(float64(failed))
}

// RecordNotification records one dispatch attempt outcome.
func (r *PrometheusRecorder) RecordNotification(outcome string) {
	r.notificationsTotal.WithLabelValues(outcome).Inc()
}

// SetActiveLeases sets the current number of outstanding governor leases.
func (r *PrometheusRecorder) SetActiveLeases(n int) {
	r.activeLeases.Set(float64(n))
}

// SetStaleLeases sets the number of leases currently past the stale threshold.
func (r *PrometheusRecorder) SetStaleLeases(n int) {
	r.staleLeases.Set(float64(n))
}

// IncForcedRelease counts one forced lease release.
func (r *PrometheusRecorder) IncForcedRelease() {
	r.forcedReleases.Inc()
}

// SetExpiredBacklog sets the expired-but-live backlog gauge.
func (r *PrometheusRecorder) SetExpiredBacklog(n int) {
	r.expiredBacklog.Set(float64(n))
}

// SetReconciliationAnomalies sets the per-kind anomaly gauges of one
// reconciliation pass.
func (r *PrometheusRecorder) SetReconciliationAnomalies(completedWithoutOffers, ignoredWithOffers, stuckNotifications int) {
	r.reconciliationAnomalies.WithLabelValues("completed_without_offers").Set(float64(completedWithoutOffers))
	r.reconciliationAnomalies.WithLabelValues("ignored_with_offers").Set(float64(ignoredWithOffers))
	r.reconciliationAnomalies.WithLabelValues("stuck_notifications").Set(float64(stuckNotifications))
}

var _ Recorder = (*PrometheusRecorder)(nil)
