package bootstrap

import (
	"context"

	"github.com/kbukum/exportkit/component"
	"github.com/kbukum/exportkit/diagnostics"
	"github.com/kbukum/exportkit/facade"
	"github.com/kbukum/exportkit/logger"
)

// diagnosticsComponent builds the diagnostics server on start, once the
// exports it reports on exist.
type diagnosticsComponent struct {
	addr    string
	service string
	version string
	backend string
	exports func() facade.Provider
	health  diagnostics.HealthFunc
	log     *logger.Logger

	server *diagnostics.ServerComponent
}

var (
	_ component.Component     = (*diagnosticsComponent)(nil)
	_ component.Describable   = (*diagnosticsComponent)(nil)
	_ component.RouteProvider = (*diagnosticsComponent)(nil)
)

func (d *diagnosticsComponent) Name() string { return "diagnostics" }

func (d *diagnosticsComponent) Start(ctx context.Context) error {
	s := diagnostics.New(d.addr, d.exports(),
		diagnostics.WithService(d.service, d.version),
		diagnostics.WithBackend(d.backend),
		diagnostics.WithHealth(d.health),
		diagnostics.WithLogger(d.log),
	)
	sc := diagnostics.NewComponent(s)
	if err := sc.Start(ctx); err != nil {
		return err
	}
	d.server = sc
	return nil
}

func (d *diagnosticsComponent) Stop(ctx context.Context) error {
	if d.server == nil {
		return nil
	}
	return d.server.Stop(ctx)
}

func (d *diagnosticsComponent) Health(ctx context.Context) component.Health {
	if d.server == nil {
		return component.Health{Name: d.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return d.server.Health(ctx)
}

func (d *diagnosticsComponent) Describe() component.Description {
	if d.server == nil {
		return component.Description{Name: "Diagnostics", Type: "server", Details: d.addr}
	}
	return d.server.Describe()
}

func (d *diagnosticsComponent) Routes() []component.Route {
	if d.server == nil {
		return nil
	}
	return d.server.Routes()
}

// DiagnosticsAddr returns the address of the running diagnostics server, or ""
// when it is disabled or not started.
func (a *App[C]) DiagnosticsAddr() string {
	if a.diagnostics == nil || a.diagnostics.server == nil {
		return ""
	}
	return a.diagnostics.server.Describe().Details
}
