package metrics

import "go.uber.org/fx"

// Module provides the Prometheus recorder as the Recorder implementation and
// starts the exposition server when enabled.
var Module = fx.Options(
	fx.Provide(NewPrometheusRecorder),
	fx.Provide(func(r *PrometheusRecorder) Recorder { return r }),
	fx.Invoke(StartExpositionServer),
)
