package database

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// DBConnection represents an abstraction of an established database connection.
// The lifecycle core accesses data through the gorm handle; the connection
// governor bounds background use of the underlying pool.
type DBConnection interface {
	// Type returns the database type (e.g., "postgres").
	Type() string
	// Name returns the logical connection name from configuration.
	Name() string
	// GormDB returns the gorm handle for this connection.
	GormDB() *gorm.DB
	// SQLDB returns the underlying *sql.DB pool.
	SQLDB() (*sql.DB, error)
	// Ping verifies the connection is alive.
	Ping(ctx context.Context) error
	// Close closes the underlying pool.
	Close() error
}

// DBProvider is responsible for providing database connections based on
// configuration. Implementations are registered per database type.
type DBProvider interface {
	// GetConnection retrieves (establishing if needed) the named connection.
	GetConnection(name string) (DBConnection, error)
	// CloseAll closes all connections managed by this provider.
	CloseAll() error
	// Type returns the database type this provider handles.
	Type() string
}

// DBProviderGroup is the Fx group name under which all DBProvider
// implementations are collected.
const DBProviderGroup = "db_providers"
