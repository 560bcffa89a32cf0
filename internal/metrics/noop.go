package metrics

import "time"

// NoopRecorder is a Recorder implementation that discards all metrics.
// It is used in tests and when metric exposition is disabled.
type NoopRecorder struct{}

// NewNoopRecorder creates a new NoopRecorder.
func NewNoopRecorder() *NoopRecorder {
	return &NoopRecorder{}
}

func (r *NoopRecorder) RecordTaskRun(taskName string, status TaskStatus, duration time.Duration) {}
func (r *NoopRecorder) RecordTransitions(completed, ignored, failed int)                         {}
func (r *NoopRecorder) RecordNotification(outcome string)                                        {}
func (r *NoopRecorder) SetActiveLeases(n int)                                                    {}
func (r *NoopRecorder) SetStaleLeases(n int)                                                     {}
func (r *NoopRecorder) IncForcedRelease()                                                        {}
func (r *NoopRecorder) SetExpiredBacklog(n int)                                                  {}
func (r *NoopRecorder) SetReconciliationAnomalies(completedWithoutOffers, ignoredWithOffers, stuckNotifications int) {
}

var _ Recorder = (*NoopRecorder)(nil)
