package tracing

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ProviderParams struct {
	fx.In

	Context context.Context
	Config  Config
	Log     *zap.Logger
}

type ProviderResult struct {
	fx.Out

	Provider       *Provider
	TracerProvider trace.TracerProvider
}

// Module provides the tracer provider and flushes it on stop.
func Module(config Config) fx.Option {
	return fx.Module(
		"tracing",
		fx.Supply(config),
		fx.Provide(NewLifecycleProvider),
	)
}

func NewLifecycleProvider(params ProviderParams, lc fx.Lifecycle) (ProviderResult, error) {
	provider, err := New(params.Context, params.Config, params.Log.Named("tracing"))
	if err != nil {
		return ProviderResult{}, err
	}

	lc.Append(fx.Hook{
		OnStop: provider.Shutdown,
	})

	return ProviderResult{
		Provider:       provider,
		TracerProvider: provider,
	}, nil
}
