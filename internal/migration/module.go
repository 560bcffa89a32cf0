package migration

import (
	"embed"

	"go.uber.org/fx"
)

// MigrationsFS carries the embedded migration files supplied by main.
type MigrationsFS struct {
	FS   embed.FS
	Path string
}

// Module applies the embedded migrations during startup, before the scheduler
// begins its first sweeps.
var Module = fx.Options(
	fx.Provide(NewMigrator),
	fx.Invoke(func(m *Migrator, fsys MigrationsFS) error {
		return m.Up(fsys.FS, fsys.Path)
	}),
)
