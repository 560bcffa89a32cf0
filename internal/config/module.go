package config

import "go.uber.org/fx"

// Module provides the loaded *Config to the Fx graph.
var Module = fx.Options(
	fx.Provide(NewConfigProvider),
)
