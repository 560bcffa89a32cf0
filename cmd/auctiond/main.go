package main

import (
	"context"
	"embed"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/fx"

	mysqlprovider "github.com/souqfin/auctiond/internal/adapter/database/gorm/mysql"
	postgresprovider "github.com/souqfin/auctiond/internal/adapter/database/gorm/postgres"
	sqliteprovider "github.com/souqfin/auctiond/internal/adapter/database/gorm/sqlite"
	"github.com/souqfin/auctiond/internal/app"
	"github.com/souqfin/auctiond/internal/config"
	"github.com/souqfin/auctiond/internal/migration"
	"github.com/souqfin/auctiond/internal/support/logger"
)

// embeddedConfig embeds the application's YAML configuration file.
//
//go:embed resources/application.yaml
var embeddedConfig []byte

// migrationsFS embeds the database migration files.
//
//go:embed all:resources/migrations
var migrationsFS embed.FS

// dbProviderModules maps database provider names to their Fx modules.
var dbProviderModules = map[string]fx.Option{
	"postgres": postgresprovider.Module,
	"mysql":    mysqlprovider.Module,
	"sqlite":   sqliteprovider.Module,
}

// getDBProviderOptions selects the DB providers to register based on the
// DB_ADAPTERS environment variable; all supported providers by default.
func getDBProviderOptions() []fx.Option {
	adapters := os.Getenv("DB_ADAPTERS")
	if adapters == "" {
		adapters = "postgres,mysql,sqlite"
	}

	options := make([]fx.Option, 0)
	for _, name := range strings.Split(adapters, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if module, ok := dbProviderModules[name]; ok {
			options = append(options, module)
			logger.Debugf("DB provider '%s' selected and registered.", name)
		} else {
			logger.Warnf("DB provider '%s' is configured but not supported. Skipping.", name)
		}
	}
	return options
}

// main is the entry point of the daemon. It installs signal handling for
// graceful shutdown and hands control to the Fx application.
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Warnf("Received signal '%v'. Stopping background tasks...", sig)
		cancel()
	}()

	envFilePath := os.Getenv("ENV_FILE_PATH")
	if envFilePath == "" {
		envFilePath = ".env"
	}

	app.RunApplication(
		ctx,
		envFilePath,
		config.EmbeddedConfig(embeddedConfig),
		migration.MigrationsFS{FS: migrationsFS, Path: "resources/migrations"},
		getDBProviderOptions(),
	)
	os.Exit(0)
}
