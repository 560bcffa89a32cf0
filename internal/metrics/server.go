package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/fx"

	"github.com/souqfin/auctiond/internal/config"
	"github.com/souqfin/auctiond/internal/support/logger"
)

// StartExpositionServer starts the Prometheus exposition HTTP server when
// metrics are enabled, tied to the Fx lifecycle.
func StartExpositionServer(lc fx.Lifecycle, cfg *config.Config, recorder *PrometheusRecorder) {
	if !cfg.Auctiond.Metrics.Enabled {
		logger.Debugf("Metrics exposition disabled.")
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", recorder.Handler())
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Auctiond.Metrics.Port),
		Handler: mux,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Infof("Metrics exposition listening on %s", server.Addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Errorf("Metrics server failed: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}
