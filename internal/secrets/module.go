package secrets

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ProviderParams struct {
	fx.In

	Config Config
	Log    *zap.Logger
}

// Module provides the configured credentials provider.
func Module(config Config) fx.Option {
	return fx.Module(
		"secrets",
		fx.Supply(config),
		fx.Provide(func(params ProviderParams) (Provider, error) {
			return NewProvider(params.Config, params.Log)
		}),
	)
}
