package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/exportkit/catalog"
	"github.com/kbukum/exportkit/component"
	"github.com/kbukum/exportkit/facade"
	"github.com/kbukum/exportkit/logger"
	"github.com/kbukum/exportkit/metadata"
	"github.com/kbukum/exportkit/observability"
	"github.com/kbukum/exportkit/reader"
)

// App is the explicit application context: it owns the configuration, the
// part catalog, and, once started, the composed Exports. There is no
// global locator; pass App.Exports to the code that needs it.
//
// Example:
//
//	app, err := bootstrap.NewApp(&cfg, cat)
//	app.OnStart(func(ctx context.Context) error {
//	    svc, err := facade.GetExportedValue[OrderService](app.Exports)
//	    ...
//	})
//	app.Run(context.Background())
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Catalog    *catalog.Catalog
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	// Exports is set when the exports component starts.
	Exports facade.Provider
	// Records are the export records the catalog scan produced.
	Records []metadata.ExportRecord

	gracefulTimeout time.Duration
	backend         Backend
	metrics         *observability.Metrics
	readerOpts      []reader.Option
	telemetry       *telemetry
	diagnostics     *diagnosticsComponent

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp creates an application from a typed config and a part catalog.
// It applies defaults, validates the config, initializes the logger and
// registers the telemetry, exports and diagnostics components.
func NewApp[C Config](cfg C, cat *catalog.Catalog, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	if cat == nil {
		cat = catalog.New()
	}

	base := cfg.GetServiceConfig()
	comp := cfg.GetCompositionConfig()
	o := resolveOptions(opts)

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		Catalog:         cat,
		Components:      component.NewRegistry(),
		gracefulTimeout: 15 * time.Second,
		backend:         o.backend,
		metrics:         o.metrics,
		readerOpts:      o.readerOpts,
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}
	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(base.Logging)
		app.Logger = logger.GetGlobalLogger()
	}
	app.Summary = NewSummary(base.Name, base.Version)

	if comp.Observability.Tracing || comp.Observability.Metrics {
		app.telemetry = &telemetry{service: base, cfg: comp.Observability, backend: backendName(comp.Backend, app.backend)}
		if err := app.Components.Register(app.telemetry); err != nil {
			return nil, err
		}
	}
	if err := app.Components.Register(app.newExportsComponent()); err != nil {
		return nil, err
	}
	if comp.Diagnostics.Enabled {
		app.diagnostics = &diagnosticsComponent{
			addr:    comp.Diagnostics.Addr,
			service: base.Name,
			version: base.Version,
			backend: backendName(comp.Backend, app.backend),
			exports: func() facade.Provider { return app.Exports },
			health:  app.Components.HealthAll,
			log:     app.Logger.WithComponent("diagnostics"),
		}
		if err := app.Components.Register(app.diagnostics); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// RegisterComponent adds a component. It starts after the built-in ones,
// so Exports is available to it.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// ReadyCheck verifies that all registered components are healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var unhealthy []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status != component.StatusHealthy {
			detail := h.Name + "=" + string(h.Status)
			if h.Message != "" {
				detail += "(" + h.Message + ")"
			}
			unhealthy = append(unhealthy, detail)
		}
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

// Run executes the full lifecycle of a long-running service:
// start components → OnStart → ReadyCheck → OnReady → wait for signal →
// OnStop → stop components.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}

	a.Logger.Info("Application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)

	return a.stop()
}

// RunTask runs task with the full lifecycle and shuts down when it returns
// or a SIGINT/SIGTERM cancels its context. Use it for CLIs and batch jobs.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.Start(ctx); err != nil {
		return err
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("Received signal, canceling task", map[string]interface{}{
				"signal": sig.String(),
			})
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := task(taskCtx)

	if stopErr := a.stop(); stopErr != nil {
		if taskErr != nil {
			return taskErr
		}
		return stopErr
	}
	return taskErr
}

// Start starts every component, composing Exports on the way, then runs
// the OnStart and OnReady hooks. Use it with Shutdown when managing the
// lifecycle yourself. A failed start stops what already started.
func (a *App[C]) Start(ctx context.Context) error {
	start := time.Now()

	a.Logger.Info("Starting application", map[string]interface{}{
		"name":    a.Name,
		"version": a.Version,
	})

	if err := a.Components.StartAll(ctx); err != nil {
		a.abort()
		return fmt.Errorf("initialization failed: %w", err)
	}

	if err := runHooks(ctx, phaseStart, a.onStart); err != nil {
		a.abort()
		return fmt.Errorf("onStart hook failed: %w", err)
	}

	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if err := runHooks(ctx, phaseReady, a.onReady); err != nil {
		a.abort()
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	a.Summary.SetStartupDuration(time.Since(start))
	a.DisplaySummary()
	return nil
}

// DisplaySummary prints the startup summary collected from the components
// and the exports.
func (a *App[C]) DisplaySummary() {
	a.Summary.DisplaySummary(a.Components, a.Exports)
}

// WaitForSignal blocks until SIGINT/SIGTERM or context cancellation.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal", map[string]interface{}{
			"signal": sig.String(),
		})
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
		return nil
	}
}

// Shutdown performs graceful shutdown after Start.
func (a *App[C]) Shutdown(ctx context.Context) error {
	return a.stop()
}

// abort stops whatever started without running OnStop hooks.
func (a *App[C]) abort() {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()
	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("Cleanup after failed start", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// stop runs the OnStop hooks and stops components in reverse order within
// the graceful timeout. The exports component disposes the shared
// instances.
func (a *App[C]) stop() error {
	a.Logger.Info("Shutting down application", map[string]interface{}{
		"timeout": a.gracefulTimeout.String(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var shutdownErr error
	if err := runHooks(ctx, phaseStop, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", map[string]interface{}{
			"error": err.Error(),
		})
		shutdownErr = err
	}

	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("Shutdown completed with errors", map[string]interface{}{
			"error": err.Error(),
		})
		if shutdownErr == nil {
			shutdownErr = err
		}
	}

	a.Logger.Info("Application shutdown complete")
	return shutdownErr
}
