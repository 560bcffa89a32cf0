package gorm

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	dbadapter "github.com/souqfin/auctiond/internal/adapter/database"
	"github.com/souqfin/auctiond/internal/config"
)

// ConnectionResolver resolves named database connections against the set of
// registered providers, dispatching on the configured connection type.
type ConnectionResolver struct {
	cfg       *config.Config
	providers map[string]dbadapter.DBProvider
}

// NewConnectionResolver creates a resolver over the supplied providers.
func NewConnectionResolver(cfg *config.Config, providers []dbadapter.DBProvider) *ConnectionResolver {
	byType := make(map[string]dbadapter.DBProvider, len(providers))
	for _, p := range providers {
		byType[p.Type()] = p
	}
	return &ConnectionResolver{cfg: cfg, providers: byType}
}

// Resolve returns the named connection, establishing it if necessary.
func (r *ConnectionResolver) Resolve(name string) (dbadapter.DBConnection, error) {
	rawConfig, ok := r.cfg.Auctiond.AdapterConfigs[name]
	if !ok {
		return nil, fmt.Errorf("database configuration '%s' not found under the database section", name)
	}
	var dbConfig dbadapter.DatabaseConfig
	if err := mapstructure.Decode(rawConfig, &dbConfig); err != nil {
		return nil, fmt.Errorf("failed to decode database config for '%s': %w", name, err)
	}

	provider, ok := r.providers[dbConfig.Type]
	if !ok {
		return nil, fmt.Errorf("no provider registered for database type '%s' (connection '%s')", dbConfig.Type, name)
	}
	return provider.GetConnection(name)
}

// CloseAll closes every connection across all registered providers.
func (r *ConnectionResolver) CloseAll() error {
	for _, p := range r.providers {
		if err := p.CloseAll(); err != nil {
			return err
		}
	}
	return nil
}
