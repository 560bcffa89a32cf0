package engine

import "go.uber.org/fx"

// Module provides the status transition engine.
var Module = fx.Options(
	fx.Provide(New),
)
