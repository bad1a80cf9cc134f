package server

import (
	"net/http"

	"go.uber.org/fx"
)

// HttpHandler is a route contributed to the server by a module.
type HttpHandler struct {
	Name    string
	Handler http.Handler
}

type HttpHandlerResult struct {
	fx.Out

	Handler *HttpHandler `group:"handlers"`
}

func AsHttpHandler(
	name string,
	handler http.Handler,
) HttpHandlerResult {
	return HttpHandlerResult{
		Handler: &HttpHandler{
			Name:    name,
			Handler: handler,
		},
	}
}

// NewHandler mounts handlers on a mux and wraps it with the request
// middleware shared by the standalone server and the lambda handler.
func NewHandler(handlers []*HttpHandler, middlewares ...Middleware) http.Handler {
	mux := http.NewServeMux()

	for _, handler := range handlers {
		mux.Handle(handler.Name, handler.Handler)
	}

	return Chain(mux, middlewares...)
}
