package transport

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/lambda-feedback/restproxy/internal/transport"

// TracingTransport opens a client span around every upstream call.
type TracingTransport struct {
	next   Transport
	tracer trace.Tracer
}

var _ Transport = (*TracingTransport)(nil)

// NewTracingTransport wraps next with spans from the given provider.
func NewTracingTransport(next Transport, provider trace.TracerProvider) *TracingTransport {
	return &TracingTransport{
		next:   next,
		tracer: provider.Tracer(tracerName),
	}
}

func (t *TracingTransport) Call(ctx context.Context, call Call) (*Response, error) {
	verb, _ := call.Operation.Verb()

	ctx, span := t.tracer.Start(ctx, "upstream "+call.Operation.String(),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", verb),
			attribute.String("url.full", call.URL),
			attribute.String("restproxy.operation", call.Operation.String()),
		),
	)
	defer span.End()

	res, err := t.next.Call(ctx, call)
	if err != nil {
		if transportErr, ok := AsError(err); ok {
			span.SetAttributes(attribute.String("error.type", transportErr.Reason.String()))
			if transportErr.IsCanceled() {
				return nil, err
			}
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("http.response.status_code", res.Status))
	if res.Status >= 500 {
		span.SetStatus(codes.Error, "upstream server error")
	}

	return res, nil
}
