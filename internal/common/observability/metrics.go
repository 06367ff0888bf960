package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records submission stage timings through an OpenTelemetry
// meter exported on the Prometheus registry.
type Observability struct {
	meterProvider *metric.MeterProvider
	stageCounter  otelmetric.Int64Counter
	stageDuration otelmetric.Float64Histogram
}

// New returns a usable Observability even when the exporter cannot be
// built; recording is then a no-op.
func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return &Observability{}, err
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	stageCounter, err := meter.Int64Counter(
		"submission.stages",
		otelmetric.WithDescription("Submission stages reached"),
	)
	if err != nil {
		return &Observability{meterProvider: provider}, err
	}

	stageDuration, err := meter.Float64Histogram(
		"submission.stage.duration",
		otelmetric.WithDescription("Time spent in each submission stage"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return &Observability{meterProvider: provider}, err
	}

	return &Observability{
		meterProvider: provider,
		stageCounter:  stageCounter,
		stageDuration: stageDuration,
	}, nil
}

// NewNoop returns an Observability that records nothing.
func NewNoop() *Observability {
	return &Observability{}
}

// RecordStage counts a stage transition and how long the stage took.
func (o *Observability) RecordStage(ctx context.Context, stage string, took time.Duration, ok bool) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("stage", stage),
		attribute.Bool("ok", ok),
	)
	if o.stageCounter != nil {
		o.stageCounter.Add(ctx, 1, attrs)
	}
	if o.stageDuration != nil {
		o.stageDuration.Record(ctx, float64(took.Milliseconds()), attrs)
	}
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil || o.meterProvider == nil {
		return nil
	}
	return o.meterProvider.Shutdown(ctx)
}
