package otel

import (
	"context"
	"log/slog"
	"time"

	"github.com/adrianliechti/tts-playground/pkg/engine"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type Engine interface {
	Observable
	engine.Engine
	engine.Wrapper
}

type observableEngine struct {
	name    string
	runtime string

	engine engine.Engine

	operationDurationMetric metric.Float64Histogram
	audioDurationMetric     metric.Float64Counter
}

func NewEngine(runtime string, e engine.Engine) Engine {
	meter := otel.Meter(instrumentationName)

	operationDurationMetric, _ := meter.Float64Histogram("tts.client.operation.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of synthesis calls"),
	)

	audioDurationMetric, _ := meter.Float64Counter("tts.client.audio.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Length of synthesized audio"),
	)

	return &observableEngine{
		engine: e,

		name:    e.Name(),
		runtime: runtime,

		operationDurationMetric: operationDurationMetric,
		audioDurationMetric:     audioDurationMetric,
	}
}

func (p *observableEngine) otelSetup() {
}

func (p *observableEngine) Unwrap() engine.Engine {
	return p.engine
}

func (p *observableEngine) Name() string {
	return p.engine.Name()
}

func (p *observableEngine) IsInitialized() bool {
	return p.engine.IsInitialized()
}

func (p *observableEngine) SupportedLanguages() []string {
	return p.engine.SupportedLanguages()
}

func (p *observableEngine) Initialize(ctx context.Context) error {
	if p.engine.IsInitialized() {
		return nil
	}

	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "initialize "+p.name)
	defer span.End()

	timestamp := time.Now()

	err := p.engine.Initialize(ctx)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return err
	}

	slog.InfoContext(ctx, "engine initialized", "engine", p.name, "runtime", p.runtime, "duration", time.Since(timestamp))

	return nil
}

func (p *observableEngine) Synthesize(ctx context.Context, text string, options *engine.SynthesizeOptions) (*engine.Result, error) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "synthesize "+p.name)
	defer span.End()

	attrs := []attribute.KeyValue{
		attribute.String("tts.engine", p.name),
		attribute.String("tts.runtime", p.runtime),
	}

	span.SetAttributes(attrs...)

	if EnableDebug {
		span.SetAttributes(attribute.String("input", text))
	}

	timestamp := time.Now()

	result, err := p.engine.Synthesize(ctx, text, options)

	p.operationDurationMetric.Record(ctx, time.Since(timestamp).Seconds(), metric.WithAttributes(attrs...))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	p.audioDurationMetric.Add(ctx, result.Duration.Seconds(), metric.WithAttributes(attrs...))

	for _, w := range result.Warnings {
		span.AddEvent("warning", trace.WithAttributes(attribute.String("message", w)))
	}

	if result.IsFile() {
		span.SetAttributes(attribute.String("tts.output.path", result.Path))
	}

	return result, nil
}
