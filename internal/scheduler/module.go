package scheduler

import "go.uber.org/fx"

// Module provides the scheduler.
var Module = fx.Options(
	fx.Provide(New),
)
