// Package observability wires OpenTelemetry tracing for the legal-aid API and
// provides the span helpers used by services and the generation invoker.
//
// Spans cover the HTTP layer (otelgin), case store queries (the GORM tracing
// plugin), service methods and every model call. Case descriptions and
// generated text are never attached as attributes.
package observability

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc/credentials"

	"github.com/tbourn/legal-aid-backend/internal/config"
)

// ShutdownFunc flushes pending spans and releases the exporter.
type ShutdownFunc func(context.Context) error

// Test seams.
var (
	newExporter = func(ctx context.Context, cfg config.OTELConfig) (sdktrace.SpanExporter, error) {
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		} else {
			opts = append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewClientTLSFromCert(nil, "")))
		}
		return otlptracegrpc.New(ctx, opts...)
	}

	newResource = func(ctx context.Context, serviceName, version string) (*resource.Resource, error) {
		// OTEL_RESOURCE_ATTRIBUTES can add deployment.environment and the like.
		return resource.New(ctx,
			resource.WithFromEnv(),
			resource.WithAttributes(
				semconv.ServiceName(serviceName),
				semconv.ServiceVersion(version),
			),
		)
	}
)

func noopShutdown(context.Context) error { return nil }

// SetupOTel configures OpenTelemetry tracing and returns a shutdown function.
// When tracing is disabled it installs nothing and returns a no-op shutdown,
// so spans started through otel.Tracer fall back to the global no-op provider.
// On error the globals are left untouched.
func SetupOTel(ctx context.Context, cfg config.OTELConfig, version string) (ShutdownFunc, error) {
	if !cfg.Enabled {
		return noopShutdown, nil
	}

	exp, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("otlp exporter: %w", err)
	}
	res, err := newResource(ctx, cfg.ServiceName, version)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("otel resource: %w", err), exp.Shutdown(ctx))
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithSampler(sampler(cfg.SampleRatio)),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))

	return func(ctx context.Context) error {
		return errors.Join(tp.ForceFlush(ctx), tp.Shutdown(ctx))
	}, nil
}

// sampler honours an upstream sampling decision and otherwise keeps ratio of
// new traces.
func sampler(ratio float64) sdktrace.Sampler {
	switch {
	case ratio >= 1:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case ratio <= 0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	}
}
