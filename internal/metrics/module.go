package metrics

import "go.uber.org/fx"

// Module provides the metrics recorder.
func Module() fx.Option {
	return fx.Module(
		"metrics",
		fx.Provide(func() *Recorder {
			return NewRecorder(nil)
		}),
	)
}
