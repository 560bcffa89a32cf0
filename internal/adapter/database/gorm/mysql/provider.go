// Package mysql provides the GORM DBProvider implementation for MySQL.
package mysql

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	dbadapter "github.com/souqfin/auctiond/internal/adapter/database"
	gormadapter "github.com/souqfin/auctiond/internal/adapter/database/gorm"
	"github.com/souqfin/auctiond/internal/config"
)

// init registers the MySQL dialector factory with the GORM adapter.
func init() {
	gormadapter.RegisterDialector("mysql", func(cfg dbadapter.DatabaseConfig) (gorm.Dialector, error) {
		return mysql.Open(ConnectionString(cfg)), nil
	})
}

// MySQLDBProvider implements dbadapter.DBProvider for MySQL connections.
type MySQLDBProvider struct {
	*gormadapter.BaseProvider
}

// ConnectionString generates the DSN for MySQL connections.
func ConnectionString(c dbadapter.DatabaseConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// NewProvider creates a new dbadapter.DBProvider for MySQL.
func NewProvider(cfg *config.Config) dbadapter.DBProvider {
	return &MySQLDBProvider{BaseProvider: gormadapter.NewBaseProvider(cfg, "mysql")}
}
