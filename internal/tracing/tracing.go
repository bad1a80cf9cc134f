// Package tracing sets up the OpenTelemetry tracer provider used for
// upstream call spans.
package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

const exportTimeout = 10 * time.Second

type Config struct {
	// Enabled turns on span recording.
	Enabled bool `conf:"enabled"`

	// Endpoint is the OTLP gRPC collector address. Spans are recorded
	// but not exported when empty.
	Endpoint string `conf:"endpoint"`

	// Insecure disables TLS towards the collector.
	Insecure bool `conf:"insecure"`

	// SampleRate is the fraction of traces sampled, from 0 to 1.
	SampleRate float64 `conf:"sample_rate"`

	// ServiceName is reported as the service.name resource attribute.
	ServiceName string `conf:"service_name"`
}

// Provider owns the tracer provider and its exporter.
type Provider struct {
	trace.TracerProvider

	sdk *sdktrace.TracerProvider
	log *zap.Logger
}

// New creates the tracer provider. A disabled config yields a no-op
// provider.
func New(ctx context.Context, cfg Config, log *zap.Logger, opts ...sdktrace.TracerProviderOption) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{TracerProvider: noop.NewTracerProvider(), log: log}, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace resource: %w", err)
	}

	options := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(createSampler(cfg.SampleRate))),
	}

	if cfg.Endpoint != "" {
		exporterOpts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(cfg.Endpoint),
			otlptracegrpc.WithTimeout(exportTimeout),
		}
		if cfg.Insecure {
			exporterOpts = append(exporterOpts, otlptracegrpc.WithInsecure())
		}

		exporter, err := otlptracegrpc.New(ctx, exporterOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create otlp exporter: %w", err)
		}

		options = append(options, sdktrace.WithBatcher(exporter))
	}

	provider := sdktrace.NewTracerProvider(append(options, opts...)...)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Info("tracing enabled",
		zap.String("endpoint", cfg.Endpoint),
		zap.Float64("sample_rate", cfg.SampleRate),
	)

	return &Provider{TracerProvider: provider, sdk: provider, log: log}, nil
}

// Shutdown flushes pending spans.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.sdk == nil {
		return nil
	}

	if err := p.sdk.Shutdown(ctx); err != nil {
		p.log.Error("failed to shutdown tracer provider", zap.Error(err))
		return err
	}

	return nil
}

func createSampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1.0:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}
