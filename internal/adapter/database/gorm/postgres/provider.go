// Package postgres provides the GORM DBProvider implementation for PostgreSQL.
package postgres

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	dbadapter "github.com/souqfin/auctiond/internal/adapter/database"
	gormadapter "github.com/souqfin/auctiond/internal/adapter/database/gorm"
	"github.com/souqfin/auctiond/internal/config"
)

// init registers the PostgreSQL dialector factory with the GORM adapter.
func init() {
	gormadapter.RegisterDialector("postgres", func(cfg dbadapter.DatabaseConfig) (gorm.Dialector, error) {
		return postgres.Open(ConnectionString(cfg)), nil
	})
}

// PostgresDBProvider implements dbadapter.DBProvider for PostgreSQL connections.
type PostgresDBProvider struct {
	*gormadapter.BaseProvider
}

// ConnectionString generates the DSN for PostgreSQL connections.
func ConnectionString(c dbadapter.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.Sslmode)
}

// NewProvider creates a new dbadapter.DBProvider for PostgreSQL.
func NewProvider(cfg *config.Config) dbadapter.DBProvider {
	return &PostgresDBProvider{BaseProvider: gormadapter.NewBaseProvider(cfg, "postgres")}
}
