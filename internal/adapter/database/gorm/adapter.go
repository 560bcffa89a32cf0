// Package gorm provides the GORM-backed implementation of the database
// adapter interfaces, plus a dialector registry that concrete database type
// subpackages (postgres, mysql, sqlite) register themselves with.
package gorm

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	dbadapter "github.com/souqfin/auctiond/internal/adapter/database"
	"github.com/souqfin/auctiond/internal/support/logger"
)

// NewGormLogger creates a gorm logger instance mapped from the auctiond log level.
func NewGormLogger(level string) gormlogger.Interface {
	var gormLevel gormlogger.LogLevel
	switch strings.ToUpper(level) {
	case "ERROR":
		gormLevel = gormlogger.Error
	case "WARN":
		gormLevel = gormlogger.Warn
	case "DEBUG":
		gormLevel = gormlogger.Info
	default:
		gormLevel = gormlogger.Silent
	}

	return gormlogger.New(
		NewGormWriter(),
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// GormWriter redirects GORM log output to the auctiond logger.
type GormWriter struct{}

// NewGormWriter creates a new instance of GormWriter.
func NewGormWriter() *GormWriter {
	return &GormWriter{}
}

// Printf implements the gormlogger.Writer interface.
// SQL trace lines are demoted to DEBUG; everything else is INFO.
func (w *GormWriter) Printf(format string, v ...interface{}) {
	msg := strings.TrimSpace(fmt.Sprintf(format, v...))
	if strings.Contains(msg, "SELECT") || strings.Contains(msg, "INSERT") ||
		strings.Contains(msg, "UPDATE") || strings.Contains(msg, "DELETE") {
		logger.Debugf("[GORM] %s", msg)
	} else {
		logger.Infof("[GORM] %s", msg)
	}
}

// GormDBAdapter implements dbadapter.DBConnection on top of a *gorm.DB.
type GormDBAdapter struct {
	db     *gorm.DB
	sqlDB  *sql.DB
	cfg    dbadapter.DatabaseConfig
	dbType string
	name   string
}

// NewGormDBAdapter creates a new GormDBAdapter for an established gorm handle.
func NewGormDBAdapter(db *gorm.DB, cfg dbadapter.DatabaseConfig, name string) (dbadapter.DBConnection, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying *sql.DB for '%s': %w", name, err)
	}

	return &GormDBAdapter{
		db:     db,
		sqlDB:  sqlDB,
		cfg:    cfg,
		dbType: cfg.Type,
		name:   name,
	}, nil
}

// Type returns the database type.
func (a *GormDBAdapter) Type() string { return a.dbType }

// Name returns the logical connection name.
func (a *GormDBAdapter) Name() string { return a.name }

// GormDB returns the gorm handle.
func (a *GormDBAdapter) GormDB() *gorm.DB { return a.db }

// SQLDB returns the underlying *sql.DB pool.
func (a *GormDBAdapter) SQLDB() (*sql.DB, error) { return a.sqlDB, nil }

// Ping verifies the connection is alive.
func (a *GormDBAdapter) Ping(ctx context.Context) error {
	return a.sqlDB.PingContext(ctx)
}

// Close closes the underlying pool.
func (a *GormDBAdapter) Close() error {
	return a.sqlDB.Close()
}

var _ dbadapter.DBConnection = (*GormDBAdapter)(nil)
