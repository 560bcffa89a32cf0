// Package governor bounds the database pool capacity available to background
// tasks. Every lease it grants is tracked with a watchdog timer and either
// explicitly released by its owner or force-released once it exceeds the
// configured maximum lifetime — never both, never neither. A stale lease is
// evidence of a bug in a task; the governor's job is containment, not
// diagnosis.
package governor

import (
	"context"
	"time"

	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbadapter "github.com/souqfin/auctiond/internal/adapter/database"
	"github.com/souqfin/auctiond/internal/config"
	"github.com/souqfin/auctiond/internal/metrics"
	"github.com/souqfin/auctiond/internal/support/exception"
	"github.com/souqfin/auctiond/internal/support/logger"
)

const moduleName = "governor"

// Governor leases database connections to background tasks with a hard
// ceiling on concurrency and on lease duration.
type Governor struct {
	conn     dbadapter.DBConnection
	recorder metrics.Recorder

	acquireTimeout   time.Duration
	leaseMaxLifetime time.Duration

	// slots bounds the number of concurrently outstanding leases.
	slots chan struct{}

	mu     sync.Mutex
	leases map[string]*Lease

	// now is a clock seam for tests.
	now func() time.Time
}

// New creates a Governor over the supplied connection using the configured bounds.
func New(cfg *config.Config, conn dbadapter.DBConnection, recorder metrics.Recorder) *Governor {
	gc := cfg.Auctiond.Governor
	return &Governor{
		conn:             conn,
		recorder:         recorder,
		acquireTimeout:   gc.AcquireTimeout(),
		leaseMaxLifetime: gc.LeaseMaxLifetime(),
		slots:            make(chan struct{}, gc.MaxLeases),
		leases:           make(map[string]*Lease),
		now:              time.Now,
	}
}

// Acquire requests a lease for the named task, waiting at most the configured
// acquire timeout for capacity and a live pool connection. On timeout it fails
// with exception.ErrConnectionTimeout and nothing is leased. On success the
// lease is registered with a watchdog timer set to the lease maximum lifetime.
func (g *Governor) Acquire(ctx context.Context, taskName string) (*Lease, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, g.acquireTimeout)
	defer cancel()

	select {
	case g.slots <- struct{}{}:
	case <-acquireCtx.Done():
		return nil, exception.NewTaskError(moduleName,
			"connection acquisition timed out for task '"+taskName+"'",
			exception.ErrConnectionTimeout, true)
	}

	// Capacity is held; verify the pool can actually serve a connection within
	// the same bound before handing out the lease.
	if err := g.conn.Ping(acquireCtx); err != nil {
		<-g.slots
		if acquireCtx.Err() != nil {
			return nil, exception.NewTaskError(moduleName,
				"connection acquisition timed out for task '"+taskName+"'",
				exception.ErrConnectionTimeout, true)
		}
		return nil, exception.NewTaskError(moduleName,
			"connection verification failed for task '"+taskName+"'", err, true)
	}

	leaseCtx, leaseCancel := context.WithCancel(context.Background())
	lease := &Lease{
		id:         uuid.NewString(),
		taskName:   taskName,
		acquiredAt: g.now(),
		db:         g.conn.GormDB().WithContext(leaseCtx),
		cancel:     leaseCancel,
	}
	lease.watchdog = time.AfterFunc(g.leaseMaxLifetime, func() {
		g.forceRelease(lease.id, "watchdog expired")
	})

	g.mu.Lock()
	g.leases[lease.id] = lease
	active := len(g.leases)
	g.mu.Unlock()
	g.recorder.SetActiveLeases(active)

	logger.Debugf("Lease %s acquired by task '%s'.", lease.id, taskName)
	return lease, nil
}

// Release returns the leased capacity to the pool and clears the watchdog.
// Releasing an unknown lease ID is a no-op that logs a warning: the lease was
// already force-released or released twice, and either way there is nothing
// left to clean up.
func (g *Governor) Release(leaseID string) {
	g.mu.Lock()
	lease, ok := g.leases[leaseID]
	if ok {
		delete(g.leases, leaseID)
	}
	active := len(g.leases)
	g.mu.Unlock()

	if !ok {
		logger.Warnf("Release called for unknown lease %s (already released?).", leaseID)
		return
	}

	lease.watchdog.Stop()
	lease.cancel()
	<-g.slots
	g.recorder.SetActiveLeases(active)
	logger.Debugf("Lease %s released by task '%s'.", leaseID, lease.taskName)
}

// RunWithConnection acquires a lease, invokes fn with the leased handle and
// releases the lease regardless of whether fn returns an error or panics.
// This is the primary entry point for background tasks; direct Acquire/Release
// is for advanced cases.
func (g *Governor) RunWithConnection(ctx context.Context, taskName string, fn func(db *gorm.DB) error) error {
	lease, err := g.Acquire(ctx, taskName)
	if err != nil {
		return err
	}
	defer g.Release(lease.ID())
	return fn(lease.DB())
}

// forceRelease reclaims a lease whose owner never released it. The capacity is
// returned to the pool and the lease context is cancelled, so an outstanding
// query underneath it is aborted.
func (g *Governor) forceRelease(leaseID, reason string) {
	g.mu.Lock()
	lease, ok := g.leases[leaseID]
	if ok {
		delete(g.leases, leaseID)
	}
	active := len(g.leases)
	g.mu.Unlock()

	if !ok {
		return
	}

	lease.watchdog.Stop()
	lease.cancel()
	<-g.slots
	g.recorder.SetActiveLeases(active)
	g.recorder.IncForcedRelease()
	logger.Warnf("Force-released lease %s held by task '%s' for %s (%s).",
		leaseID, lease.taskName, g.now().Sub(lease.acquiredAt), reason)
}

// SweepStale scans all outstanding leases and force-releases any older than
// the lease maximum lifetime. It runs on its own fixed cadence independent of
// individual task cadences, as a backstop behind the per-lease watchdogs.
// Returns the number of leases reclaimed.
func (g *Governor) SweepStale() int {
	g.mu.Lock()
	var stale []string
	for id, lease := range g.leases {
		if g.now().Sub(lease.acquiredAt) > g.leaseMaxLifetime {
			stale = append(stale, id)
		}
	}
	g.mu.Unlock()

	for _, id := range stale {
		g.forceRelease(id, "stale sweep")
	}
	g.recorder.SetStaleLeases(0)
	return len(stale)
}

// EmergencyDrain force-releases every outstanding lease unconditionally.
// Used for shutdown and crash recovery. Returns the number of leases reclaimed.
func (g *Governor) EmergencyDrain() int {
	g.mu.Lock()
	ids := make([]string, 0, len(g.leases))
	for id := range g.leases {
		ids = append(ids, id)
	}
	g.mu.Unlock()

	for _, id := range ids {
		g.forceRelease(id, "emergency drain")
	}
	if len(ids) > 0 {
		logger.Warnf("Emergency drain reclaimed %d outstanding lease(s).", len(ids))
	}
	return len(ids)
}

// Status returns the count of active leases, per-lease ages and the count
// currently past the stale threshold. Consumed by the health check task.
func (g *Governor) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()

	st := Status{TotalActive: len(g.leases)}
	for _, lease := range g.leases {
		age := g.now().Sub(lease.acquiredAt)
		st.Leases = append(st.Leases, LeaseInfo{
			ID:       lease.id,
			TaskName: lease.taskName,
			Age:      age,
		})
		if age > g.leaseMaxLifetime {
			st.StaleCount++
		}
	}
	g.recorder.SetStaleLeases(st.StaleCount)
	return st
}
