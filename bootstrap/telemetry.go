package bootstrap

import (
	"context"
	"errors"
	"fmt"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/exportkit/component"
	"github.com/kbukum/exportkit/config"
	"github.com/kbukum/exportkit/observability"
)

const telemetryComponent = "telemetry"

// telemetry owns the OTLP tracer and meter providers.
type telemetry struct {
	service *config.ServiceConfig
	cfg     config.ObservabilityConfig
	backend string

	tp      *sdktrace.TracerProvider
	mp      *sdkmetric.MeterProvider
	metrics *observability.Metrics
}

var (
	_ component.Component   = (*telemetry)(nil)
	_ component.Describable = (*telemetry)(nil)
)

func (t *telemetry) Name() string { return telemetryComponent }

func (t *telemetry) Start(ctx context.Context) error {
	cfg := observability.Config{
		Service:     t.service.Name,
		Version:     t.service.Version,
		Environment: t.service.Environment,
		Backend:     t.backend,
		Endpoint:    t.cfg.Endpoint,
		Insecure:    t.cfg.Insecure,
		SampleRate:  t.cfg.SampleRate,
	}
	if t.cfg.Tracing {
		tp, err := observability.InitTracer(ctx, cfg)
		if err != nil {
			return err
		}
		t.tp = tp
	}

	if t.cfg.Metrics {
		mp, err := observability.InitMeter(ctx, cfg)
		if err != nil {
			return err
		}
		t.mp = mp

		metrics, err := observability.NewMetrics(observability.Meter("github.com/kbukum/exportkit"))
		if err != nil {
			return err
		}
		t.metrics = metrics
	}
	return nil
}

func (t *telemetry) Stop(ctx context.Context) error {
	var errs []error
	if t.tp != nil {
		if err := t.tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if t.mp != nil {
		if err := t.mp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (t *telemetry) Health(context.Context) component.Health {
	if (t.cfg.Tracing && t.tp == nil) || (t.cfg.Metrics && t.mp == nil) {
		return component.Health{Name: telemetryComponent, Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: telemetryComponent, Status: component.StatusHealthy}
}

func (t *telemetry) Describe() component.Description {
	return component.Description{
		Name:    "Telemetry",
		Type:    "telemetry",
		Details: fmt.Sprintf("otlp=%s tracing=%t metrics=%t", t.cfg.Endpoint, t.cfg.Tracing, t.cfg.Metrics),
	}
}
