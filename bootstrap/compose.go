package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/exportkit/backend/arena"
	"github.com/kbukum/exportkit/backend/digbackend"
	"github.com/kbukum/exportkit/backend/vesselbackend"
	"github.com/kbukum/exportkit/binder"
	"github.com/kbukum/exportkit/component"
	"github.com/kbukum/exportkit/config"
	"github.com/kbukum/exportkit/facade"
	"github.com/kbukum/exportkit/logger"
	"github.com/kbukum/exportkit/observability"
	"github.com/kbukum/exportkit/reader"
)

const exportsComponent = "exports"

// Backend is a composition backend: a binding target that also resolves.
type Backend interface {
	binder.Target
	facade.Provider
}

// NewBackend creates the backend registered under name.
func NewBackend(name string) (Backend, error) {
	switch name {
	case config.BackendArena, "":
		return arena.New(), nil
	case config.BackendDig:
		return digbackend.New(), nil
	case config.BackendVessel:
		return vesselbackend.New(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
}

// compose scans the catalog, binds the records into the backend and
// publishes the provider as a.Exports.
func (a *App[C]) compose(ctx context.Context) error {
	comp := a.Cfg.GetCompositionConfig()
	start := time.Now()

	scanCtx, span := observability.StartSpan(ctx, observability.SpanScan)
	opts := append([]reader.Option{
		reader.WithFailFast(comp.ShouldFailFast()),
		reader.WithLogger(a.Logger),
	}, a.readerOpts...)
	records, err := reader.New(opts...).ReadCatalog(a.Catalog)
	if err != nil {
		observability.SetSpanError(scanCtx, err)
		if comp.ShouldFailFast() {
			span.End()
			return fmt.Errorf("reading catalog: %w", err)
		}
		a.Logger.Warn("Skipped parts with broken declarations", map[string]interface{}{
			"error":   err.Error(),
			"records": len(records),
		})
	}
	span.End()

	backend := a.backend
	if backend == nil {
		if backend, err = NewBackend(comp.Backend); err != nil {
			return err
		}
	}

	bindCtx, span := observability.StartSpan(ctx, observability.SpanBind)
	defer span.End()
	if _, err := binder.BindExports(records, a.Catalog, backend); err != nil {
		observability.SetSpanError(bindCtx, err)
		_ = backend.Close()
		return fmt.Errorf("binding exports: %w", err)
	}

	name := backendName(comp.Backend, a.backend)
	var provider facade.Provider = backend
	metrics := a.metrics
	if a.telemetry != nil && a.telemetry.metrics != nil {
		metrics = a.telemetry.metrics
	}
	if metrics != nil || comp.Observability.Tracing {
		provider = observability.Instrument(backend,
			observability.WithMetrics(metrics),
			observability.WithBackend(name),
		)
	}

	regs := 0
	if in, ok := backend.(facade.Inspector); ok {
		regs = len(in.Registrations())
	}
	if metrics != nil {
		metrics.RecordRegistrations(ctx, name, regs)
	}

	a.Records = records
	a.Exports = provider
	a.Logger.Info("Exports composed", logger.Merge(
		logger.DurationFields("compose", time.Since(start)),
		logger.Fields(logger.FieldBackend, name, "records", len(records), "registrations", regs),
	))
	return nil
}

func backendName(configured string, custom Backend) string {
	if custom != nil {
		return fmt.Sprintf("%T", custom)
	}
	if configured == "" {
		return config.BackendArena
	}
	return configured
}

// newExportsComponent runs the composition as the first lifecycle step after
// telemetry and disposes the exports on stop.
func (a *App[C]) newExportsComponent() *component.Funcs {
	return &component.Funcs{
		ComponentName: exportsComponent,
		StartFunc:     a.compose,
		StopFunc: func(context.Context) error {
			if a.Exports == nil {
				return nil
			}
			return a.Exports.Close()
		},
		HealthFunc: func(ctx context.Context) component.Health {
			if a.Exports == nil {
				return component.Health{Status: component.StatusUnhealthy, Message: "not composed"}
			}
			return observability.RegistryChecker{Name: exportsComponent, Provider: a.Exports}.CheckHealth(ctx)
		},
		Description: &component.Description{
			Name:    "Exports",
			Type:    "composition",
			Details: "backend=" + backendName(a.Cfg.GetCompositionConfig().Backend, a.backend),
		},
	}
}
