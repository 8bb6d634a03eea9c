package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/exportkit/logger"
)

// InitMeter installs a global OTLP meter provider exporting every
// cfg.Interval. The caller shuts it down.
func InitMeter(ctx context.Context, cfg Config) (*sdkmetric.MeterProvider, error) {
	cfg = cfg.withDefaults()

	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("observability: metric exporter: %w", err)
	}
	res, err := cfg.resource()
	if err != nil {
		return nil, fmt.Errorf("observability: resource: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.Interval))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Get("telemetry").Info("Meter installed", logger.Fields(
		logger.FieldService, cfg.Service,
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the composition instruments.
type Metrics struct {
	resolutionTotal    metric.Int64Counter
	resolutionDuration metric.Float64Histogram
	scopesActive       metric.Int64UpDownCounter
	registrations      metric.Int64Counter
	errorTotal         metric.Int64Counter
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	resolutionTotal, err := meter.Int64Counter("exportkit.resolution.total",
		metric.WithDescription("Provider calls by operation, contract and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating exportkit.resolution.total counter: %w", err)
	}

	resolutionDuration, err := meter.Float64Histogram("exportkit.resolution.duration",
		metric.WithDescription("Duration of provider calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating exportkit.resolution.duration histogram: %w", err)
	}

	scopesActive, err := meter.Int64UpDownCounter("exportkit.scopes.active",
		metric.WithDescription("Open sharing boundary scopes"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating exportkit.scopes.active gauge: %w", err)
	}

	registrations, err := meter.Int64Counter("exportkit.registrations",
		metric.WithDescription("Registrations bound per backend"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating exportkit.registrations counter: %w", err)
	}

	errorTotal, err := meter.Int64Counter("exportkit.error.total",
		metric.WithDescription("Errors by code and operation"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating exportkit.error.total counter: %w", err)
	}

	return &Metrics{
		resolutionTotal:    resolutionTotal,
		resolutionDuration: resolutionDuration,
		scopesActive:       scopesActive,
		registrations:      registrations,
		errorTotal:         errorTotal,
	}, nil
}

// RecordResolution records one provider call.
func (m *Metrics) RecordResolution(ctx context.Context, operation, contract, outcome string, duration time.Duration) {
	m.resolutionTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("contract", contract),
		attribute.String("outcome", outcome),
	))
	m.resolutionDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("contract", contract),
	))
}

// RecordScope adjusts the open scope count by delta.
func (m *Metrics) RecordScope(ctx context.Context, delta int64) {
	m.scopesActive.Add(ctx, delta)
}

// RecordRegistrations records n registrations bound into backend.
func (m *Metrics) RecordRegistrations(ctx context.Context, backend string, n int) {
	m.registrations.Add(ctx, int64(n), metric.WithAttributes(attribute.String("backend", backend)))
}

// RecordError records an error by code and operation.
func (m *Metrics) RecordError(ctx context.Context, code, operation string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("operation", operation),
	))
}
