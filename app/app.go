package app

import (
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"

	"github.com/lambda-feedback/restproxy/config"
	"github.com/lambda-feedback/restproxy/internal/metrics"
	"github.com/lambda-feedback/restproxy/internal/secrets"
	"github.com/lambda-feedback/restproxy/internal/shell"
	"github.com/lambda-feedback/restproxy/internal/tracing"
	"github.com/lambda-feedback/restproxy/internal/transport"
	"github.com/lambda-feedback/restproxy/util/conf"
	"github.com/lambda-feedback/restproxy/util/logging"
)

// New creates the shell for the proxy commands, with the upstream
// transport and its dependencies wired.
func New(ctx *cli.Context) (*shell.Shell, error) {
	log, err := logging.LoggerFromContext(ctx.Context)
	if err != nil {
		return nil, err
	}

	config, err := conf.GetConfigFromContext[config.Config](ctx.Context)
	if err != nil {
		return nil, err
	}

	sharedModule := fx.Module(
		"shared",
		// provide global config
		fx.Supply(config),
		// provide proxy and metrics config
		fx.Supply(config.Proxy),
		fx.Supply(config.Metrics),
		// provide metrics recorder
		metrics.Module(),
		// provide tracer provider
		tracing.Module(config.Tracing),
		// provide upstream credentials
		secrets.Module(config.Credentials),
		// provide upstream transport
		transport.Module(config.Upstream),
	)

	return shell.New(log, sharedModule), nil
}
