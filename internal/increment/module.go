package increment

import (
	"net/http"

	"go.uber.org/fx"

	"github.com/lambda-feedback/restproxy/internal/server"
	"github.com/lambda-feedback/restproxy/util/logging"
)

// Path is the route of the increment endpoint.
const Path = "/api/increment"

func NewRoute(handler *Handler) server.HttpHandlerResult {
	return server.AsHttpHandler(Path, handler)
}

func NewHealthRoute() server.HttpHandlerResult {
	return server.AsHttpHandler("/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func Module(config Config) fx.Option {
	return fx.Module(
		"increment",
		// rename logger for module
		logging.DecorateLogger("increment"),
		// provide config
		fx.Supply(config),
		// provide handler
		fx.Provide(NewHandler),
		// provide routes
		fx.Provide(NewRoute),
		fx.Provide(NewHealthRoute),
		// provide server
		server.Module(config.HttpConfig),
	)
}
