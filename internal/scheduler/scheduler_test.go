package scheduler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/souqfin/auctiond/internal/metrics"
	"github.com/souqfin/auctiond/internal/scheduler"
)

func newTestScheduler() *scheduler.Scheduler {
	return scheduler.New(metrics.NewNoopRecorder())
}

func TestRegisterValidation(t *testing.T) {
	s := newTestScheduler()
	noop := func(ctx context.Context) error { return nil }

	require.NoError(t, s.Register("sweep", time.Hour, true, noop))

	err := s.Register("sweep", time.Hour, true, noop)
	assert.ErrorContains(t, err, "already registered")

	err = s.Register("bad", 0, true, noop)
	assert.ErrorContains(t, err, "positive interval")

	s.Start()
	defer s.Stop()
	err = s.Register("late", time.Hour, true, noop)
	assert.ErrorContains(t, err, "already started")
}

func TestStartRunsEagerlyBeforeFirstInterval(t *testing.T) {
	s := newTestScheduler()
	var runs atomic.Int32
	require.NoError(t, s.Register("sweep", time.Hour, true, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}))

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return runs.Load() == 1 },
		time.Second, 5*time.Millisecond, "first run must not wait for the interval")
}

func TestDisabledTaskNeverRuns(t *testing.T) {
	s := newTestScheduler()
	var runs atomic.Int32
	require.NoError(t, s.Register("sweep", 10*time.Millisecond, false, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}))

	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	assert.Zero(t, runs.Load())

	statuses := s.GetStatus()
	require.Len(t, statuses, 1)
	assert.False(t, statuses[0].Enabled)
	assert.True(t, statuses[0].LastRun.IsZero())
}

func TestOverlappingTickIsSkipped(t *testing.T) {
	s := newTestScheduler()
	var runs atomic.Int32
	release := make(chan struct{})

	require.NoError(t, s.Register("slow", 10*time.Millisecond, true, func(ctx context.Context) error {
		runs.Add(1)
		<-release
		return nil
	}))

	s.Start()

	// Let several ticks elapse while the first run is still blocked.
	assert.Eventually(t, func() bool { return runs.Load() == 1 },
		time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load(), "ticks during an in-flight run must be skipped")

	close(release)
	s.Stop()
}

func TestPanicInOneTaskDoesNotStopOthers(t *testing.T) {
	s := newTestScheduler()
	var healthyRuns atomic.Int32

	require.NoError(t, s.Register("panicky", 10*time.Millisecond, true, func(ctx context.Context) error {
		panic("boom")
	}))
	require.NoError(t, s.Register("healthy", 10*time.Millisecond, true, func(ctx context.Context) error {
		healthyRuns.Add(1)
		return nil
	}))

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return healthyRuns.Load() >= 3 },
		time.Second, 5*time.Millisecond, "healthy task must keep ticking past the other task's panics")
}

func TestFailingTaskKeepsTicking(t *testing.T) {
	s := newTestScheduler()
	var runs atomic.Int32
	require.NoError(t, s.Register("flaky", 10*time.Millisecond, true, func(ctx context.Context) error {
		runs.Add(1)
		return errors.New("transient failure")
	}))

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return runs.Load() >= 3 },
		time.Second, 5*time.Millisecond, "a failing task is retried on the next tick")
}

func TestStopWaitsForInFlightRun(t *testing.T) {
	s := newTestScheduler()
	var finished atomic.Bool
	entered := make(chan struct{})

	require.NoError(t, s.Register("slow", time.Hour, true, func(ctx context.Context) error {
		close(entered)
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
		return nil
	}))

	s.Start()
	<-entered
	s.Stop()

	assert.True(t, finished.Load(), "Stop must not return before the in-flight run completes")
	assert.False(t, s.IsRunning())
}

func TestStartAndStopAreIdempotent(t *testing.T) {
	s := newTestScheduler()
	var runs atomic.Int32
	require.NoError(t, s.Register("sweep", time.Hour, true, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}))

	s.Start()
	s.Start()
	assert.Eventually(t, func() bool { return runs.Load() == 1 },
		time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), runs.Load(), "second Start must not spawn a second loop")

	s.Stop()
	s.Stop()
	assert.False(t, s.IsRunning())
}

func TestTriggerNowRunsOutOfSchedule(t *testing.T) {
	s := newTestScheduler()
	var runs atomic.Int32
	require.NoError(t, s.Register("sweep", time.Hour, true, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}))

	s.Start()
	defer s.Stop()
	assert.Eventually(t, func() bool { return runs.Load() == 1 },
		time.Second, 5*time.Millisecond)

	require.NoError(t, s.TriggerNow("sweep"))
	assert.Eventually(t, func() bool { return runs.Load() == 2 },
		time.Second, 5*time.Millisecond)

	assert.Error(t, s.TriggerNow("nonexistent"))
}

func TestStopWaitsForTriggeredRun(t *testing.T) {
	s := newTestScheduler()
	var runs atomic.Int32
	require.NoError(t, s.Register("sweep", time.Hour, true, func(ctx context.Context) error {
		time.Sleep(30 * time.Millisecond)
		runs.Add(1)
		return nil
	}))

	s.Start()
	assert.Eventually(t, func() bool { return runs.Load() == 1 },
		time.Second, 5*time.Millisecond)

	require.NoError(t, s.TriggerNow("sweep"))
	s.Stop()

	assert.Equal(t, int32(2), runs.Load(), "Stop must wait for a manually triggered run")

	// No triggering on a stopped scheduler.
	assert.ErrorContains(t, s.TriggerNow("sweep"), "not running")
}

func TestGetStatusIsSortedAndReflectsRuns(t *testing.T) {
	s := newTestScheduler()
	noop := func(ctx context.Context) error { return nil }
	require.NoError(t, s.Register("zebra", time.Hour, true, noop))
	require.NoError(t, s.Register("alpha", time.Hour, true, noop))

	s.Start()
	defer s.Stop()
	assert.Eventually(t, func() bool {
		for _, st := range s.GetStatus() {
			if st.LastRun.IsZero() {
				return false
			}
		}
		return true
	}, time.Second, 5*time.Millisecond)

	statuses := s.GetStatus()
	require.Len(t, statuses, 2)
	assert.Equal(t, "alpha", statuses[0].Name)
	assert.Equal(t, "zebra", statuses[1].Name)
	assert.Equal(t, time.Hour, statuses[0].Interval)
}
