package transport

import (
	"context"
	"net/http"
	"sort"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/lambda-feedback/restproxy/internal/metrics"
	"github.com/lambda-feedback/restproxy/internal/secrets"
)

type TransportParams struct {
	fx.In

	Context context.Context

	Config      Config
	Credentials secrets.Provider
	Recorder    *metrics.Recorder
	Tracer      trace.TracerProvider `optional:"true"`
	Log         *zap.Logger
}

// Module provides the decorated upstream transport.
func Module(config Config) fx.Option {
	return fx.Module(
		"transport",
		fx.Supply(config),
		fx.Provide(New),
	)
}

// New resolves the upstream credentials once and composes the
// transport stack: http, metrics, breaker, tracing (outermost).
// Credentials rotated afterwards take effect on restart.
func New(params TransportParams) (Transport, error) {
	creds, err := secrets.Resolve(params.Context, params.Credentials)
	if err != nil {
		return nil, err
	}

	log := params.Log.Named("transport")

	var t Transport = NewHTTPTransport(Options{
		VerifyTLS: params.Config.VerifyTLS,
		Headers:   BuildHeaders(creds, params.Config.Headers),
		Timeout:   params.Config.Timeout,
	}, WithLogger(log))

	if params.Recorder != nil {
		t = NewInstrumentedTransport(t, params.Recorder)
	}

	if params.Config.Breaker.Enabled {
		t = NewBreakerTransport("upstream", t, params.Config.Breaker, log)
	}

	if params.Tracer != nil {
		t = NewTracingTransport(t, params.Tracer)
	}

	log.Info("upstream transport ready",
		zap.String("url", params.Config.URL),
		zap.Bool("verify_tls", params.Config.VerifyTLS),
		zap.Bool("breaker", params.Config.Breaker.Enabled),
	)

	return t, nil
}

// BuildHeaders returns the ordered header list for upstream calls.
// Content-Type and Authorization come first, extra headers follow
// sorted by name.
func BuildHeaders(creds secrets.Credentials, extra map[string]string) []Header {
	headers := []Header{
		{Name: "Content-Type", Value: "application/json"},
		{Name: "Authorization", Value: creds.BasicAuth()},
	}

	names := make([]string, 0, len(extra))
	for name := range extra {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		headers = append(headers, Header{
			Name:  http.CanonicalHeaderKey(name),
			Value: extra[name],
		})
	}

	return headers
}
