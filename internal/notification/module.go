package notification

import (
	"os"
	"strconv"

	"go.uber.org/fx"

	"github.com/souqfin/auctiond/internal/config"
	"github.com/souqfin/auctiond/internal/metrics"
)

// NewDisabledFunc builds the global-disable check. The environment variable
// takes precedence over the loaded configuration so the switch can be flipped
// on a running deployment without a restart.
func NewDisabledFunc(cfg *config.Config) DisabledFunc {
	return func() bool {
		if v, ok := os.LookupEnv("AUCTIOND_NOTIFICATIONS_DISABLED"); ok {
			if b, err := strconv.ParseBool(v); err == nil {
				return b
			}
		}
		return cfg.Auctiond.Notifications.Disabled
	}
}

// Module provides the notifier and the dispatch gate.
var Module = fx.Options(
	fx.Provide(NewLogNotifier),
	fx.Provide(NewDisabledFunc),
	fx.Provide(func(notifier Notifier, disabled DisabledFunc, recorder metrics.Recorder, cfg *config.Config) *Gate {
		return NewGate(notifier, disabled, recorder, cfg.Auctiond.Notifications.DispatchDelay())
	}),
)
