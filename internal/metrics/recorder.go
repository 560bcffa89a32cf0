// Package metrics defines the metric recording abstraction for auctiond and
// its Prometheus implementation. A no-op recorder is available for tests.
package metrics

import "time"

// TaskStatus labels the outcome of one scheduled task run.
type TaskStatus string

const (
	TaskStatusSucceeded TaskStatus = "succeeded"
	TaskStatusFailed    TaskStatus = "failed"
	TaskStatusSkipped   TaskStatus = "skipped"
)

// Recorder records operational metrics emitted by the scheduler, the
// connection governor, the transition engine and the dispatch gate.
type Recorder interface {
	// RecordTaskRun records one completed run of a scheduled task.
	RecordTaskRun(taskName string, status TaskStatus, duration time.Duration)
	// RecordTransitions records the outcome counts of one engine sweep.
	RecordTransitions(completed, ignored, failed int)
	// RecordNotification records one dispatch attempt outcome ("sent",
	// "skipped" or "failed").
	RecordNotification(outcome string)
	// SetActiveLeases sets the current number of outstanding governor leases.
	SetActiveLeases(n int)
	// SetStaleLeases sets the number of leases currently past the stale threshold.
	SetStaleLeases(n int)
	// IncForcedRelease counts one forced lease release.
	IncForcedRelease()
	// SetExpiredBacklog sets the count of applications past their deadline
	// still awaiting transition.
	SetExpiredBacklog(n int)
	// SetReconciliationAnomalies sets the gauges measured by one
	// reconciliation pass.
	SetReconciliationAnomalies(completedWithoutOffers, ignoredWithOffers, stuckNotifications int)
}
