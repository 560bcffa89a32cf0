package governor

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Lease is a tracked, time-bounded borrow of database pool capacity handed to
// a background task. The gorm handle it carries is bound to the lease context,
// so a forced release cancels any query still outstanding underneath it.
type Lease struct {
	id         string
	taskName   string
	acquiredAt time.Time
	db         *gorm.DB
	cancel     context.CancelFunc
	watchdog   *time.Timer
}

// ID returns the generated lease identifier.
func (l *Lease) ID() string { return l.id }

// TaskName returns the name of the task owning this lease.
func (l *Lease) TaskName() string { return l.taskName }

// AcquiredAt returns when the lease was granted.
func (l *Lease) AcquiredAt() time.Time { return l.acquiredAt }

// DB returns the gorm handle scoped to this lease.
func (l *Lease) DB() *gorm.DB { return l.db }

// LeaseInfo is the introspection view of one outstanding lease.
type LeaseInfo struct {
	ID       string
	TaskName string
	Age      time.Duration
}

// Status is the introspection view of the governor, consumed by health checks.
type Status struct {
	// TotalActive is the number of outstanding leases.
	TotalActive int
	// StaleCount is the number of leases past the stale threshold.
	StaleCount int
	// Leases lists every outstanding lease with its age.
	Leases []LeaseInfo
}
