// Package app assembles the auctiond daemon: configuration, database
// providers, the connection governor, the transition engine, the notification
// gate, the monitors and the scheduler, wired together with uber-fx.
package app

import (
	"context"

	"go.uber.org/fx"

	gormadapter "github.com/souqfin/auctiond/internal/adapter/database/gorm"
	"github.com/souqfin/auctiond/internal/config"
	"github.com/souqfin/auctiond/internal/engine"
	"github.com/souqfin/auctiond/internal/governor"
	"github.com/souqfin/auctiond/internal/metrics"
	"github.com/souqfin/auctiond/internal/migration"
	"github.com/souqfin/auctiond/internal/monitor"
	"github.com/souqfin/auctiond/internal/notification"
	"github.com/souqfin/auctiond/internal/scheduler"
	"github.com/souqfin/auctiond/internal/support/logger"
)

// RunApplication sets up and runs the daemon using uber-fx. It blocks until a
// termination signal arrives or the supplied context is cancelled.
func RunApplication(appCtx context.Context, envFilePath string, embeddedConfig config.EmbeddedConfig, migrationsFS migration.MigrationsFS, dbProviderOptions []fx.Option) {
	cfg, err := config.LoadConfig(envFilePath, embeddedConfig)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	logger.SetLogLevel(cfg.Auctiond.System.Logging.Level)

	app := fx.New(
		fx.Supply(
			embeddedConfig,
			migrationsFS,
			fx.Annotate(envFilePath, fx.ResultTags(`name:"envFilePath"`)),
		),

		fx.Options(dbProviderOptions...),
		logger.Module,
		config.Module,
		metrics.Module,
		gormadapter.Module,
		migration.Module,
		governor.Module,
		engine.Module,
		notification.Module,
		monitor.Module,
		scheduler.Module,

		fx.Invoke(RegisterTasks),
		fx.Invoke(startScheduler),
		fx.Invoke(watchContext(appCtx)),
	)

	app.Run()

	if app.Err() != nil {
		logger.Fatalf("Application run failed: %v", app.Err())
	}
}

// startScheduler ties the scheduler and the governor's drain to the Fx lifecycle.
func startScheduler(lc fx.Lifecycle, sched *scheduler.Scheduler, gov *governor.Governor, resolver *gormadapter.ConnectionResolver) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			sched.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			sched.Stop()
			if reclaimed := gov.EmergencyDrain(); reclaimed > 0 {
				logger.Warnf("Shutdown drain reclaimed %d lease(s).", reclaimed)
			}
			return resolver.CloseAll()
		},
	})
}

// watchContext shuts the application down when the signal-driven context from
// main is cancelled.
func watchContext(appCtx context.Context) func(lc fx.Lifecycle, shutdowner fx.Shutdowner) {
	return func(lc fx.Lifecycle, shutdowner fx.Shutdowner) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				go func() {
					<-appCtx.Done()
					logger.Warnf("Termination requested; shutting down.")
					if err := shutdowner.Shutdown(); err != nil {
						logger.Errorf("Failed to shut down application: %v", err)
					}
				}()
				return nil
			},
		})
	}
}
