// Package telemetry wires OpenTelemetry tracing and Prometheus metrics for
// the CLI. Both are off unless configured.
package telemetry

import (
	"context"
	"fmt"
	"log"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/AnyUserName/ggpicture/internal/config"
	"github.com/AnyUserName/ggpicture/internal/raster"
)

const (
	instrumentationName = "github.com/AnyUserName/ggpicture"
	spanPrefix          = "ggpicture."
)

// Exporter names accepted in config.Telemetry.Exporter.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// Shutdown flushes and stops the tracer provider.
type Shutdown func(context.Context) error

func noShutdown(context.Context) error { return nil }

// SetupTracing installs the global tracer provider for tc.Exporter and
// tags every span with the service name and version. With "none" the
// global no-op provider stays in place.
func SetupTracing(ctx context.Context, tc config.Telemetry, version string, logger *log.Logger) (Shutdown, error) {
	name := strings.ToLower(strings.TrimSpace(tc.Exporter))
	if name == "" || name == ExporterNone {
		return noShutdown, nil
	}

	processor, err := newProcessor(ctx, name, tc)
	if err != nil {
		return nil, err
	}

	service := tc.ServiceName
	if service == "" {
		service = "ggpicture"
	}
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(service),
		semconv.ServiceVersion(version),
	))
	if err != nil {
		return nil, fmt.Errorf("build trace resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(processor),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	if logger != nil {
		logger.Printf("tracing to %s as %s %s", name, service, version)
	}
	return tp.Shutdown, nil
}

// newProcessor picks the exporter. stdout spans are written as they end so
// a single command prints them in order; otlp spans are batched.
func newProcessor(ctx context.Context, name string, tc config.Telemetry) (sdktrace.SpanProcessor, error) {
	switch name {
	case ExporterStdout:
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("stdout trace exporter: %w", err)
		}
		return sdktrace.NewSimpleSpanProcessor(exp), nil
	case ExporterOTLP:
		if strings.TrimSpace(tc.OTLPEndpoint) == "" {
			return nil, fmt.Errorf("otlp trace exporter requires OTEL_EXPORTER_OTLP_ENDPOINT")
		}
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(tc.OTLPEndpoint)}
		if tc.OTLPInsecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		exp, err := otlptracehttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("otlp trace exporter: %w", err)
		}
		return sdktrace.NewBatchSpanProcessor(exp), nil
	default:
		return nil, fmt.Errorf("unsupported trace exporter %q (want %s, %s or %s)",
			name, ExporterNone, ExporterStdout, ExporterOTLP)
	}
}

// Tracer returns the tracer used for ggpicture spans.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// Start opens the span "ggpicture.<name>" with attrs.
func Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return Tracer().Start(ctx, spanPrefix+name, trace.WithAttributes(attrs...))
}

// End ends span. A non-nil err is recorded and the span status carries its
// error kind (decode, encode, ...).
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, raster.KindOf(err).String())
	}
	span.End()
}
