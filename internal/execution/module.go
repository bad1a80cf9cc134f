package execution

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ExecutorParams struct {
	fx.In

	Context context.Context
	Config  Config
	Log     *zap.Logger
}

// Module provides the executor and ties it to the app lifecycle. It
// expects a Config in the container.
func Module() fx.Option {
	return fx.Module(
		"execution",
		fx.Provide(NewLifecycleExecutor),
	)
}

func NewLifecycleExecutor(params ExecutorParams, lc fx.Lifecycle) (Executor, error) {
	executor, err := NewExecutor(Params{
		Context: params.Context,
		Config:  params.Config,
		Log:     params.Log,
	})
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: executor.Start,
		OnStop:  executor.Shutdown,
	})

	return executor, nil
}
