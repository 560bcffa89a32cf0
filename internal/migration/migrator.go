// Package migration applies the auctiond schema migrations embedded in the
// binary at startup, using golang-migrate over the established database
// connection.
package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	dbadapter "github.com/souqfin/auctiond/internal/adapter/database"
	"github.com/souqfin/auctiond/internal/support/logger"
)

// migrationsTable is the bookkeeping table golang-migrate maintains.
const migrationsTable = "auctiond_schema_migrations"

// Migrator applies embedded SQL migrations to the lifecycle core's database.
type Migrator struct {
	conn dbadapter.DBConnection
}

// NewMigrator creates a Migrator over the supplied connection.
func NewMigrator(conn dbadapter.DBConnection) *Migrator {
	return &Migrator{conn: conn}
}

// databaseDriver builds a migrate database driver for the connection's type.
func (m *Migrator) databaseDriver(sqlDB *sql.DB) (database.Driver, error) {
	switch m.conn.Type() {
	case "postgres":
		return postgres.WithInstance(sqlDB, &postgres.Config{MigrationsTable: migrationsTable})
	case "mysql":
		return mysql.WithInstance(sqlDB, &mysql.Config{MigrationsTable: migrationsTable})
	case "sqlite":
		return sqlite.WithInstance(sqlDB, &sqlite.Config{MigrationsTable: migrationsTable})
	default:
		return nil, fmt.Errorf("unsupported database type for migration: %s", m.conn.Type())
	}
}

// Up applies all pending migrations for the connection's dialect. DDL differs
// per dialect (identity columns, column types), so migrations live in one
// subdirectory of baseDir per database type: baseDir/postgres, baseDir/mysql,
// baseDir/sqlite. A database already at the latest version is not an error.
func (m *Migrator) Up(migrationFS fs.FS, baseDir string) error {
	sqlDB, err := m.conn.SQLDB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	dialectDir := path.Join(baseDir, m.conn.Type())
	sourceDriver, err := iofs.New(migrationFS, dialectDir)
	if err != nil {
		return fmt.Errorf("failed to create iofs source driver for path %s: %w", dialectDir, err)
	}

	dbDriver, err := m.databaseDriver(sqlDB)
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	instance, err := migrate.NewWithInstance("iofs", sourceDriver, m.conn.Name(), dbDriver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := instance.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Debugf("Schema already up to date for connection '%s'.", m.conn.Name())
			return nil
		}
		return fmt.Errorf("migration failed for connection '%s': %w", m.conn.Name(), err)
	}

	logger.Infof("Schema migrations applied for connection '%s'.", m.conn.Name())
	return nil
}
