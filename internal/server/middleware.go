package server

import (
	"net/http"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/lambda-feedback/restproxy/util/logging"
	"github.com/lambda-feedback/restproxy/util/requestid"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares so that the first one is outermost.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// DefaultMiddleware returns the middleware stack for all routes.
func DefaultMiddleware(log *zap.Logger) []Middleware {
	return []Middleware{
		RequestID(),
		Tracing(TracingOptions{}),
		AccessLog(log),
		Sentry(),
	}
}

// RequestID reuses the inbound X-Request-Id or generates one, echoes
// it on the response and stores it in the request context.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestid.Header)
			if id == "" {
				id = requestid.New()
			}

			w.Header().Set(requestid.Header, id)

			ctx := requestid.ContextWithID(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

const tracerName = "github.com/lambda-feedback/restproxy/internal/server"

// TracingOptions configure the tracing middleware. Nil fields fall
// back to the global otel provider and propagator.
type TracingOptions struct {
	Provider   trace.TracerProvider
	Propagator propagation.TextMapPropagator
}

// Tracing continues the inbound trace context and opens a server span
// per request.
func Tracing(opts TracingOptions) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provider, propagator := opts.Provider, opts.Propagator
			if provider == nil {
				provider = otel.GetTracerProvider()
			}
			if propagator == nil {
				propagator = otel.GetTextMapPropagator()
			}

			ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			ctx, span := provider.Tracer(tracerName).Start(ctx, r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.request.method", r.Method),
					attribute.String("url.path", r.URL.Path),
				),
			)
			defer span.End()

			if id, ok := requestid.FromContext(ctx); ok {
				span.SetAttributes(attribute.String("request.id", id))
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(ctx))

			span.SetAttributes(attribute.Int("http.response.status_code", rec.status))
			if rec.status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(rec.status))
			}
		})
	}
}

// AccessLog logs every request and puts a request scoped logger into
// the request context.
func AccessLog(log *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqLog := log.With(
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
			)
			if id, ok := requestid.FromContext(r.Context()); ok {
				reqLog = reqLog.With(zap.String("request_id", id))
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			ctx := logging.ContextWithLogger(r.Context(), reqLog)
			next.ServeHTTP(rec, r.WithContext(ctx))

			reqLog.Info("request",
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

// Sentry reports panics to sentry and repanics.
func Sentry() Middleware {
	handler := sentryhttp.New(sentryhttp.Options{
		Repanic: true,
	})

	return func(next http.Handler) http.Handler {
		return handler.Handle(next)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
