package standalone

import (
	"go.uber.org/fx"

	"github.com/lambda-feedback/restproxy/handler"
	"github.com/lambda-feedback/restproxy/internal/server"
	"github.com/lambda-feedback/restproxy/util/logging"
)

func Module(config Config) fx.Option {
	return fx.Module(
		"serve",
		// rename logger for module
		logging.DecorateLogger("serve"),
		// provide proxy routes
		handler.Module(),
		// provide http server
		server.Module(config.HttpConfig),
	)
}
