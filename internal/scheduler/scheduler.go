// Package scheduler runs named background tasks on independent fixed
// intervals. It is constructed once at the composition root and injected where
// needed; there is no implicit shared instance. Consecutive runs of the same
// task never overlap: a tick arriving while the previous run is still in
// flight is skipped and counted, instead of relying on intervals exceeding
// runtimes. A failure or panic inside one task's run is contained and never
// halts other tasks' timers or the host process.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/souqfin/auctiond/internal/metrics"
	"github.com/souqfin/auctiond/internal/support/logger"
)

// Scheduler drives each registered task on its own ticker.
type Scheduler struct {
	recorder metrics.Recorder

	mu      sync.Mutex
	tasks   map[string]*Task
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates an empty scheduler.
func New(recorder metrics.Recorder) *Scheduler {
	return &Scheduler{
		recorder: recorder,
		tasks:    make(map[string]*Task),
	}
}

// Register adds a named task. Registering while the scheduler is running or
// re-using a name is an error. A disabled task is kept for status reporting
// but never ticks.
func (s *Scheduler) Register(name string, interval time.Duration, enabled bool, fn TaskFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("cannot register task '%s': scheduler already started", name)
	}
	if _, exists := s.tasks[name]; exists {
		return fmt.Errorf("task '%s' already registered", name)
	}
	if interval <= 0 {
		return fmt.Errorf("task '%s' requires a positive interval", name)
	}

	s.tasks[name] = &Task{
		name:     name,
		interval: interval,
		enabled:  enabled,
		run:      fn,
	}
	logger.Debugf("Task '%s' registered (interval %s, enabled=%v).", name, interval, enabled)
	return nil
}

// Start launches one timer loop per enabled task and triggers an eager first
// run of each instead of waiting for the first interval to elapse. Calling
// Start when already running logs a warning and is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		logger.Warnf("Scheduler start requested but it is already running.")
		return
	}
	s.running = true
	ctx, cancel := context.WithCancel(context.Background())
	s.ctx = ctx
	s.cancel = cancel

	started := 0
	for _, task := range s.tasks {
		if !task.enabled {
			logger.Infof("Task '%s' is disabled; not scheduling.", task.name)
			continue
		}
		s.wg.Add(1)
		go s.loop(ctx, task)
		started++
	}
	s.mu.Unlock()

	logger.Infof("Scheduler started with %d active task(s).", started)
}

// Stop cancels all timers. It does not interrupt a task mid-execution: an
// in-flight run completes and its loop then exits. Idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.ctx = nil
	s.cancel = nil
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
	logger.Infof("Scheduler stopped.")
}

// TriggerNow kicks one immediate run of the named task, subject to the same
// overlap guard as scheduled ticks. The run is tracked like a scheduled one:
// it derives from the scheduler context and Stop waits for it to finish.
func (s *Scheduler) TriggerNow(name string) error {
	s.mu.Lock()
	task, ok := s.tasks[name]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("unknown task '%s'", name)
	}
	if !s.running {
		s.mu.Unlock()
		return fmt.Errorf("cannot trigger task '%s': scheduler is not running", name)
	}
	ctx := s.ctx
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		s.execute(ctx, task)
	}()
	return nil
}

// GetStatus returns, per registered task, whether it is enabled, its
// configured interval, whether a run is currently in flight and when it last
// ran. Sorted by task name for stable output.
func (s *Scheduler) GetStatus() []TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	statuses := make([]TaskStatus, 0, len(s.tasks))
	for _, task := range s.tasks {
		statuses = append(statuses, TaskStatus{
			Name:     task.name,
			Enabled:  task.enabled,
			Interval: task.interval,
			InFlight: task.running.Load(),
			LastRun:  task.LastRun(),
		})
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	return statuses
}

// IsRunning reports whether the scheduler has been started and not stopped.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// loop drives one task: an eager first run, then a tick per interval until the
// scheduler is stopped.
func (s *Scheduler) loop(ctx context.Context, task *Task) {
	defer s.wg.Done()

	s.execute(ctx, task)

	ticker := time.NewTicker(task.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.execute(ctx, task)
		}
	}
}

// execute wraps one task run with the overlap guard, panic containment,
// timing and metrics. Errors are logged here and never propagate; the
// scheduler is the backstop that keeps the process alive.
func (s *Scheduler) execute(ctx context.Context, task *Task) {
	if !task.running.CompareAndSwap(false, true) {
		logger.Warnf("Task '%s' is still running; skipping this tick.", task.name)
		s.recorder.RecordTaskRun(task.name, metrics.TaskStatusSkipped, 0)
		return
	}
	defer task.running.Store(false)

	start := time.Now()
	task.markStarted(start)

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic recovered in task '%s': %v", task.name, r)
			}
		}()
		return task.run(ctx)
	}()

	duration := time.Since(start)
	if err != nil {
		s.recorder.RecordTaskRun(task.name, metrics.TaskStatusFailed, duration)
		logger.Errorf("Task '%s' failed after %s: %v", task.name, duration, err)
		return
	}
	s.recorder.RecordTaskRun(task.name, metrics.TaskStatusSucceeded, duration)
	logger.Debugf("Task '%s' completed in %s.", task.name, duration)
}
