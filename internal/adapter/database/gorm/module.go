package gorm

import (
	"go.uber.org/fx"

	dbadapter "github.com/souqfin/auctiond/internal/adapter/database"
	"github.com/souqfin/auctiond/internal/config"
)

// Module provides the connection resolver plus the primary DBConnection used
// by the lifecycle core (named by infrastructure.database_ref).
var Module = fx.Options(
	fx.Provide(
		fx.Annotate(
			NewConnectionResolver,
			fx.ParamTags(``, `group:"`+dbadapter.DBProviderGroup+`"`),
		),
	),
	fx.Provide(func(cfg *config.Config, resolver *ConnectionResolver) (dbadapter.DBConnection, error) {
		return resolver.Resolve(cfg.Auctiond.Infrastructure.DatabaseRef)
	}),
)
