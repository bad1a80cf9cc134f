package handler

import (
	"go.uber.org/fx"

	"github.com/lambda-feedback/restproxy/internal/execution"
	"github.com/lambda-feedback/restproxy/internal/metrics"
	"github.com/lambda-feedback/restproxy/internal/schema"
)

// Module provides the proxy, health and metrics routes. It expects
// the handler and metrics config in the container.
func Module() fx.Option {
	return fx.Module(
		"handler",
		// provide request validation
		fx.Provide(func(cfg Config) (*schema.Validator, error) {
			return schema.Load(cfg.RequestSchema)
		}),
		// bound concurrent dispatches
		fx.Provide(func(cfg Config) execution.Config {
			return cfg.Execution
		}),
		execution.Module(),
		fx.Invoke(registerSlotMetrics),
		// provide proxy handler
		fx.Provide(NewProxyHandler),
		fx.Provide(newProxyEndpoint),
		// provide routes
		fx.Provide(NewProxyRoute),
		fx.Provide(NewLegacyRoute),
		fx.Provide(NewHealthRoute),
		fx.Provide(NewMetricsRoute),
	)
}

type slotStater interface {
	Stat() (acquired, total int32)
}

// registerSlotMetrics exports pool occupancy for bounded executors.
func registerSlotMetrics(executor execution.Executor, recorder *metrics.Recorder) {
	if pooled, ok := executor.(slotStater); ok {
		recorder.ObserveSlots(pooled.Stat)
	}
}
