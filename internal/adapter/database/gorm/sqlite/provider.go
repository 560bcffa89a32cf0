// Package sqlite provides the GORM DBProvider implementation for SQLite.
// It is primarily used by tests and local development.
package sqlite

import (
	"errors"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	dbadapter "github.com/souqfin/auctiond/internal/adapter/database"
	gormadapter "github.com/souqfin/auctiond/internal/adapter/database/gorm"
	"github.com/souqfin/auctiond/internal/config"
)

// init registers the SQLite dialector factory with the GORM adapter.
func init() {
	gormadapter.RegisterDialector("sqlite", func(cfg dbadapter.DatabaseConfig) (gorm.Dialector, error) {
		if cfg.Database == "" {
			return nil, errors.New("SQLite database path cannot be empty")
		}
		return sqlite.Open(ConnectionString(cfg)), nil
	})
}

// SQLiteDBProvider implements dbadapter.DBProvider for SQLite connections.
type SQLiteDBProvider struct {
	*gormadapter.BaseProvider
}

// ConnectionString generates the DSN for SQLite connections.
// The GORM SQLite dialector expects the file path (or ":memory:") directly.
func ConnectionString(c dbadapter.DatabaseConfig) string {
	return c.Database
}

// NewProvider creates a new dbadapter.DBProvider for SQLite.
func NewProvider(cfg *config.Config) dbadapter.DBProvider {
	return &SQLiteDBProvider{BaseProvider: gormadapter.NewBaseProvider(cfg, "sqlite")}
}
