package app

import (
	"context"

	"gorm.io/gorm"

	"github.com/souqfin/auctiond/internal/config"
	"github.com/souqfin/auctiond/internal/engine"
	"github.com/souqfin/auctiond/internal/governor"
	"github.com/souqfin/auctiond/internal/monitor"
	"github.com/souqfin/auctiond/internal/notification"
	"github.com/souqfin/auctiond/internal/scheduler"
)

// Task names as they appear in configuration and status output.
const (
	TaskStatusTransitions     = "statusTransitions"
	TaskNotificationDispatch  = "notificationDispatch"
	TaskAuctionMonitor        = "auctionMonitor"
	TaskRevenueReconciliation = "revenueReconciliation"
	TaskHealthCheck           = "healthCheck"
	TaskStaleLeaseSweep       = "staleLeaseSweep"
)

// taskDefaults are used when a task is absent from the configuration file.
var taskDefaults = map[string]config.TaskConfig{
	TaskStatusTransitions:     {Enabled: true, IntervalSeconds: 60, BatchLimit: 100},
	TaskNotificationDispatch:  {Enabled: true, IntervalSeconds: 120, BatchLimit: 50},
	TaskAuctionMonitor:        {Enabled: true, IntervalSeconds: 300},
	TaskRevenueReconciliation: {Enabled: true, IntervalSeconds: 600},
	TaskHealthCheck:           {Enabled: true, IntervalSeconds: 300},
}

// RegisterTasks binds every background task to the scheduler. Each task body
// that touches the database goes through the governor's RunWithConnection, so
// background work can never exhaust the shared pool.
func RegisterTasks(
	cfg *config.Config,
	sched *scheduler.Scheduler,
	gov *governor.Governor,
	eng *engine.Engine,
	gate *notification.Gate,
	auctionMon *monitor.AuctionMonitor,
	revenue *monitor.RevenueReconciler,
	health *monitor.HealthChecker,
) error {
	schedCfg := cfg.Auctiond.Scheduler

	transitions := schedCfg.TaskFor(TaskStatusTransitions, taskDefaults[TaskStatusTransitions])
	if err := sched.Register(TaskStatusTransitions, transitions.Interval(), transitions.Enabled, governed(gov, TaskStatusTransitions,
		func(ctx context.Context, db *gorm.DB) error {
			_, err := eng.Sweep(ctx, db, transitions.BatchLimit)
			return err
		})); err != nil {
		return err
	}

	dispatch := schedCfg.TaskFor(TaskNotificationDispatch, taskDefaults[TaskNotificationDispatch])
	if err := sched.Register(TaskNotificationDispatch, dispatch.Interval(), dispatch.Enabled, governed(gov, TaskNotificationDispatch,
		func(ctx context.Context, db *gorm.DB) error {
			_, err := gate.ProcessPending(ctx, db, dispatch.BatchLimit)
			return err
		})); err != nil {
		return err
	}

	auction := schedCfg.TaskFor(TaskAuctionMonitor, taskDefaults[TaskAuctionMonitor])
	if err := sched.Register(TaskAuctionMonitor, auction.Interval(), auction.Enabled, governed(gov, TaskAuctionMonitor, auctionMon.Run)); err != nil {
		return err
	}

	reconcile := schedCfg.TaskFor(TaskRevenueReconciliation, taskDefaults[TaskRevenueReconciliation])
	if err := sched.Register(TaskRevenueReconciliation, reconcile.Interval(), reconcile.Enabled, governed(gov, TaskRevenueReconciliation, revenue.Run)); err != nil {
		return err
	}

	healthCfg := schedCfg.TaskFor(TaskHealthCheck, taskDefaults[TaskHealthCheck])
	if err := sched.Register(TaskHealthCheck, healthCfg.Interval(), healthCfg.Enabled, governed(gov, TaskHealthCheck, health.Run)); err != nil {
		return err
	}

	// The stale-lease sweep inspects the governor's own bookkeeping and never
	// touches the database, so it runs outside RunWithConnection.
	return sched.Register(TaskStaleLeaseSweep, cfg.Auctiond.Governor.SweepInterval(), true,
		func(ctx context.Context) error {
			gov.SweepStale()
			return nil
		})
}

// governed adapts a database-touching task body into a scheduler TaskFunc that
// leases its connection from the governor for the duration of the run.
func governed(gov *governor.Governor, taskName string, fn func(ctx context.Context, db *gorm.DB) error) scheduler.TaskFunc {
	return func(ctx context.Context) error {
		return gov.RunWithConnection(ctx, taskName, func(db *gorm.DB) error {
			return fn(ctx, db)
		})
	}
}
