package governor

import "go.uber.org/fx"

// Module provides the connection governor.
var Module = fx.Options(
	fx.Provide(New),
)
