package postgres

import (
	"go.uber.org/fx"

	dbadapter "github.com/souqfin/auctiond/internal/adapter/database"
)

// Module exports the PostgreSQL DBProvider for dependency injection.
var Module = fx.Options(
	fx.Provide(
		fx.Annotate(
			NewProvider,
			fx.ResultTags(`group:"`+dbadapter.DBProviderGroup+`"`),
		),
	),
)
