package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// TaskFunc is the body of one scheduled task run.
type TaskFunc func(ctx context.Context) error

// Task is a named unit of periodic work registered with the scheduler.
type Task struct {
	name     string
	interval time.Duration
	enabled  bool
	run      TaskFunc

	// running guards against overlapping runs of the same task: a tick that
	// arrives while the previous run is still in flight is skipped.
	running atomic.Bool

	mu      sync.Mutex
	lastRun time.Time
}

// Name returns the task name.
func (t *Task) Name() string { return t.name }

// Interval returns the configured tick interval.
func (t *Task) Interval() time.Duration { return t.interval }

// Enabled reports whether the task is registered with a live timer.
func (t *Task) Enabled() bool { return t.enabled }

// LastRun returns when the task last started a run (zero if never).
func (t *Task) LastRun() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastRun
}

func (t *Task) markStarted(at time.Time) {
	t.mu.Lock()
	t.lastRun = at
	t.mu.Unlock()
}

// TaskStatus is the introspection view of one registered task.
type TaskStatus struct {
	Name     string
	Enabled  bool
	Interval time.Duration
	InFlight bool
	LastRun  time.Time
}
