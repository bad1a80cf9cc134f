package handler

import (
	"net/http"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/lambda-feedback/restproxy/internal/metrics"
	"github.com/lambda-feedback/restproxy/internal/server"
)

// proxyEndpoint is the proxy handler with its route middleware.
type proxyEndpoint struct {
	http.Handler
}

type proxyEndpointParams struct {
	fx.In

	Handler  *ProxyHandler
	Config   Config
	Recorder *metrics.Recorder
	Log      *zap.Logger
}

func newProxyEndpoint(params proxyEndpointParams) proxyEndpoint {
	reject := func(w http.ResponseWriter, r *http.Request, _ time.Duration) {
		params.Recorder.Rejected(rejectReason(errRateLimited))
		writeError(w, r, errRateLimited, params.Log)
	}

	limit := server.RateLimit(params.Config.RateLimit, params.Log, reject)

	return proxyEndpoint{Handler: limit(params.Handler)}
}

func NewProxyRoute(endpoint proxyEndpoint) server.HttpHandlerResult {
	return server.AsHttpHandler("/proxy", endpoint)
}

// NewLegacyRoute serves the proxy on the bare root as well.
func NewLegacyRoute(endpoint proxyEndpoint) server.HttpHandlerResult {
	return server.AsHttpHandler("/{$}", endpoint)
}

func NewHealthRoute() server.HttpHandlerResult {
	return server.AsHttpHandler("/health", http.HandlerFunc(HealthHandler))
}

type metricsRouteParams struct {
	fx.In

	Config   metrics.Config
	Recorder *metrics.Recorder
}

func NewMetricsRoute(params metricsRouteParams) server.HttpHandlerResult {
	if !params.Config.Enabled {
		return server.AsHttpHandler("/metrics", http.NotFoundHandler())
	}

	return server.AsHttpHandler("/metrics", params.Recorder.Handler())
}
