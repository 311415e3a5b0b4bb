package otel

import (
	"context"
	"os"
	"strings"

	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
)

type signal string

const (
	signalLogs    signal = "LOGS"
	signalTraces  signal = "TRACES"
	signalMetrics signal = "METRICS"
)

// useGRPC reports whether a signal is exported over grpc. The signal specific
// protocol variable wins over OTEL_EXPORTER_OTLP_PROTOCOL; http is the default.
func useGRPC(s signal) bool {
	protocol := os.Getenv("OTEL_EXPORTER_OTLP_" + string(s) + "_PROTOCOL")

	if protocol == "" {
		protocol = os.Getenv("OTEL_EXPORTER_OTLP_PROTOCOL")
	}

	return strings.EqualFold(strings.TrimSpace(protocol), "grpc")
}

func newLogExporter(ctx context.Context) (sdklog.Exporter, error) {
	if useGRPC(signalLogs) {
		return otlploggrpc.New(ctx)
	}

	return otlploghttp.New(ctx)
}

func newSpanExporter(ctx context.Context) (sdktrace.SpanExporter, error) {
	if useGRPC(signalTraces) {
		return otlptracegrpc.New(ctx)
	}

	return otlptracehttp.New(ctx)
}

func newMetricExporter(ctx context.Context) (sdkmetric.Exporter, error) {
	if useGRPC(signalMetrics) {
		return otlpmetricgrpc.New(ctx)
	}

	return otlpmetrichttp.New(ctx)
}
