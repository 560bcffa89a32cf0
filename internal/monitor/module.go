package monitor

import "go.uber.org/fx"

// Module provides the sibling monitors.
var Module = fx.Options(
	fx.Provide(NewAuctionMonitor),
	fx.Provide(NewRevenueReconciler),
	fx.Provide(NewHealthChecker),
)
