package otel

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"

	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const instrumentationName = "github.com/adrianliechti/tts-playground"

var (
	EnableDebug     = os.Getenv("DEBUG") != ""
	EnableTelemetry = os.Getenv("TELEMETRY") != ""
)

type Observable interface {
	otelSetup()
}

// ShutdownFunc flushes and stops the installed providers.
type ShutdownFunc func(ctx context.Context) error

// Setup installs the OTLP log, trace and metric providers for the named service.
// Without TELEMETRY set it does nothing. OTEL_SERVICE_NAME and
// OTEL_RESOURCE_ATTRIBUTES take precedence over the given name and version.
func Setup(ctx context.Context, serviceName, serviceVersion string) (ShutdownFunc, error) {
	if !EnableTelemetry {
		return func(context.Context) error { return nil }, nil
	}

	resource, err := newResource(ctx, serviceName, serviceVersion)

	if err != nil {
		return nil, err
	}

	var shutdowns []ShutdownFunc

	shutdown := func(ctx context.Context) error {
		var errs []error

		for _, fn := range shutdowns {
			errs = append(errs, fn(ctx))
		}

		return errors.Join(errs...)
	}

	logExporter, err := newLogExporter(ctx)

	if err != nil {
		return nil, err
	}

	logProvider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
		sdklog.WithResource(resource),
	)

	shutdowns = append(shutdowns, logProvider.Shutdown)

	spanExporter, err := newSpanExporter(ctx)

	if err != nil {
		shutdown(ctx)
		return nil, err
	}

	// synthesis spans are rare and slow, so every root is kept
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
		sdktrace.WithBatcher(spanExporter),
		sdktrace.WithResource(resource),
	)

	shutdowns = append(shutdowns, traceProvider.Shutdown)

	metricExporter, err := newMetricExporter(ctx)

	if err != nil {
		shutdown(ctx)
		return nil, err
	}

	// the reader honors OTEL_METRIC_EXPORT_INTERVAL
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(resource),
	)

	shutdowns = append(shutdowns, meterProvider.Shutdown)

	global.SetLoggerProvider(logProvider)
	otel.SetTracerProvider(traceProvider)
	otel.SetMeterProvider(meterProvider)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	slog.SetDefault(otelslog.NewLogger(instrumentationName, otelslog.WithLoggerProvider(logProvider)))

	return shutdown, nil
}

func newResource(ctx context.Context, serviceName, serviceVersion string) (*sdkresource.Resource, error) {
	return sdkresource.New(ctx,
		sdkresource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", serviceVersion),
		),
		sdkresource.WithFromEnv(),
		sdkresource.WithTelemetrySDK(),
		sdkresource.WithHost(),
	)
}
