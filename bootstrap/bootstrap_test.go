package bootstrap

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/kbukum/exportkit/backend/backendtest"
	"github.com/kbukum/exportkit/backend/digbackend"
	"github.com/kbukum/exportkit/catalog"
	"github.com/kbukum/exportkit/component"
	"github.com/kbukum/exportkit/config"
	"github.com/kbukum/exportkit/facade"
	"github.com/kbukum/exportkit/logger"
	"github.com/kbukum/exportkit/marker/classic"
	"github.com/kbukum/exportkit/observability"
)

// conflicting declares two creation policies and fails the scan.
type conflicting struct {
	_ classic.ExportSelf
	_ classic.PartCreationPolicy `policy:"Shared"`
	_ classic.PartCreationPolicy `policy:"NonShared"`
}

type mockComponent struct {
	name     string
	startErr error
	health   component.Health
	started  bool
	stopped  bool
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	m.started = true
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	m.stopped = true
	return nil
}
func (m *mockComponent) Health(ctx context.Context) component.Health {
	if m.health.Status == "" {
		return component.Health{Name: m.name, Status: component.StatusHealthy}
	}
	return m.health
}

func newTestConfig(backend string) *config.AppConfig {
	cfg := &config.AppConfig{}
	cfg.Name = "test-svc"
	cfg.Version = "1.0.0"
	cfg.Composition.Backend = backend
	return cfg
}

func quietLogger() *logger.Logger {
	cfg := logger.Config{Level: "error", Format: "json"}
	return logger.NewWithWriter(&cfg, "test", io.Discard)
}

func newTestApp(t *testing.T, cfg *config.AppConfig, cat *catalog.Catalog, opts ...Option) *App[*config.AppConfig] {
	t.Helper()
	app, err := NewApp(cfg, cat, append([]Option{WithLogger(quietLogger())}, opts...)...)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	app.Summary.SetOutput(io.Discard)
	return app
}

func componentNames(r *component.Registry) []string {
	var names []string
	for _, c := range r.All() {
		names = append(names, c.Name())
	}
	return names
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t, newTestConfig(""), nil)

	if app.Name != "test-svc" || app.Version != "1.0.0" {
		t.Errorf("unexpected identity %q %q", app.Name, app.Version)
	}
	if app.Cfg.Composition.Backend != config.BackendArena {
		t.Errorf("expected defaults applied, got %q", app.Cfg.Composition.Backend)
	}
	if app.Catalog == nil || app.Logger == nil || app.Summary == nil {
		t.Error("expected catalog, logger and summary")
	}
	if app.Exports != nil {
		t.Error("exports must not exist before start")
	}
	if got := componentNames(app.Components); len(got) != 1 || got[0] != "exports" {
		t.Errorf("expected [exports], got %v", got)
	}
}

func TestNewApp_OptionalComponents(t *testing.T) {
	cfg := newTestConfig("")
	cfg.Composition.Diagnostics.Enabled = true
	cfg.Composition.Observability.Tracing = true
	app := newTestApp(t, cfg, nil)

	got := strings.Join(componentNames(app.Components), ",")
	if got != "telemetry,exports,diagnostics" {
		t.Errorf("unexpected component order %s", got)
	}
}

func TestNewApp_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.AppConfig)
	}{
		{"unknown backend", func(c *config.AppConfig) { c.Composition.Backend = "unity" }},
		{"missing name", func(c *config.AppConfig) { c.Name = "" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := newTestConfig("")
			tc.mutate(cfg)
			if _, err := NewApp(cfg, nil, WithLogger(quietLogger())); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestRunTask_ComposesEveryBackend(t *testing.T) {
	for _, backend := range []string{config.BackendArena, config.BackendDig, config.BackendVessel} {
		t.Run(backend, func(t *testing.T) {
			counters := &backendtest.Counters{}
			app := newTestApp(t, newTestConfig(backend), backendtest.NewCatalog(counters))

			var greeting *backendtest.Greeting
			err := app.RunTask(context.Background(), func(ctx context.Context) error {
				g, err := facade.GetExportedValue[backendtest.Greeter](app.Exports)
				if err != nil {
					return err
				}
				if g.Greet() != "hello" {
					return fmt.Errorf("unexpected greeting %q", g.Greet())
				}
				greeting, err = facade.GetExportedValue[*backendtest.Greeting](app.Exports)
				if err != nil {
					return err
				}
				if any(g) != any(greeting) {
					return fmt.Errorf("contracts of a shared part must resolve to one instance")
				}
				return nil
			})
			if err != nil {
				t.Fatalf("RunTask failed: %v", err)
			}
			if len(app.Records) == 0 {
				t.Error("expected scanned records")
			}
			if counters.Greeting.Load() != 1 {
				t.Errorf("expected one Greeting, got %d", counters.Greeting.Load())
			}
			if !greeting.Closed() {
				t.Error("expected shared instance disposed on shutdown")
			}
		})
	}
}

func TestStart_FailFastReader(t *testing.T) {
	cat := catalog.New().MustAdd(catalog.TypeOf[*conflicting]())
	app := newTestApp(t, newTestConfig(""), cat)

	if err := app.Start(context.Background()); err == nil {
		t.Fatal("expected scan error")
	}
	if app.Exports != nil {
		t.Error("exports must not be published after a failed scan")
	}
}

func TestStart_ContinueOnReaderError(t *testing.T) {
	counters := &backendtest.Counters{}
	cat := backendtest.NewCatalog(counters).MustAdd(catalog.TypeOf[*conflicting]())
	cfg := newTestConfig("")
	failFast := false
	cfg.Composition.Reader.FailFast = &failFast
	app := newTestApp(t, cfg, cat)

	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer app.Shutdown(context.Background())

	for _, rec := range app.Records {
		if rec.ImplementationType() == catalog.TypeOf[*conflicting]() {
			t.Error("broken part must be skipped")
		}
	}
	if _, err := facade.GetExportedValue[backendtest.Greeter](app.Exports); err != nil {
		t.Errorf("good parts must still resolve: %v", err)
	}
}

func TestHooks(t *testing.T) {
	app := newTestApp(t, newTestConfig(""), backendtest.NewCatalog(&backendtest.Counters{}))

	var order []string
	var greeting *backendtest.Greeting
	app.OnStart(func(ctx context.Context) error {
		if app.Exports == nil {
			return fmt.Errorf("exports not composed")
		}
		greeting = facade.MustGetExportedValue[*backendtest.Greeting](app.Exports)
		order = append(order, "start")
		return nil
	})
	app.OnReady(func(ctx context.Context) error {
		order = append(order, "ready")
		return nil
	})
	app.OnStop(func(ctx context.Context) error {
		if greeting.Closed() {
			return fmt.Errorf("exports disposed before OnStop")
		}
		order = append(order, "stop")
		return nil
	})

	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := app.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if strings.Join(order, ",") != "start,ready,stop" {
		t.Errorf("unexpected hook order %v", order)
	}
	if !greeting.Closed() {
		t.Error("expected disposal after OnStop")
	}
}

func TestStart_ComponentFailureStopsStarted(t *testing.T) {
	app := newTestApp(t, newTestConfig(""), nil)
	ok := &mockComponent{name: "cache"}
	bad := &mockComponent{name: "queue", startErr: fmt.Errorf("connection refused")}
	app.RegisterComponent(ok)
	app.RegisterComponent(bad)

	stopHookRan := false
	app.OnStop(func(context.Context) error {
		stopHookRan = true
		return nil
	})

	if err := app.Start(context.Background()); err == nil {
		t.Fatal("expected start error")
	}
	if !ok.stopped {
		t.Error("expected started component to be stopped")
	}
	if bad.stopped {
		t.Error("failed component must not be stopped")
	}
	if stopHookRan {
		t.Error("OnStop hooks must not run after a failed start")
	}
}

func TestStart_HookFailure(t *testing.T) {
	app := newTestApp(t, newTestConfig(""), nil)
	app.OnStart(func(context.Context) error { return fmt.Errorf("boom") })

	err := app.Start(context.Background())
	if err == nil || !strings.Contains(err.Error(), "onStart hook failed") {
		t.Fatalf("expected hook error, got %v", err)
	}
}

func TestReadyCheck(t *testing.T) {
	app := newTestApp(t, newTestConfig(""), backendtest.NewCatalog(&backendtest.Counters{}))
	app.RegisterComponent(&mockComponent{
		name:   "queue",
		health: component.Health{Name: "queue", Status: component.StatusDegraded, Message: "lagging"},
	})
	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer app.Shutdown(context.Background())

	err := app.ReadyCheck(context.Background())
	if err == nil || !strings.Contains(err.Error(), "queue=degraded(lagging)") {
		t.Errorf("expected degraded queue, got %v", err)
	}
}

func TestWithBackend(t *testing.T) {
	custom := digbackend.New()
	app := newTestApp(t, newTestConfig(""), backendtest.NewCatalog(&backendtest.Counters{}), WithBackend(custom))
	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer app.Shutdown(context.Background())

	if app.Exports != facade.Provider(custom) {
		t.Errorf("expected the custom backend, got %T", app.Exports)
	}
}

func TestNewBackend(t *testing.T) {
	for _, name := range []string{"", config.BackendArena, config.BackendDig, config.BackendVessel} {
		if b, err := NewBackend(name); err != nil || b == nil {
			t.Errorf("NewBackend(%q) = %v, %v", name, b, err)
		}
	}
	if _, err := NewBackend("unity"); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestWithMetrics(t *testing.T) {
	rd := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(rd))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	metrics, err := observability.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatal(err)
	}

	app := newTestApp(t, newTestConfig(config.BackendDig), backendtest.NewCatalog(&backendtest.Counters{}), WithMetrics(metrics))
	err = app.RunTask(context.Background(), func(ctx context.Context) error {
		if _, ok := app.Exports.(*observability.Provider); !ok {
			return fmt.Errorf("expected instrumented exports, got %T", app.Exports)
		}
		_, err := facade.GetExportedValue[backendtest.Greeter](app.Exports)
		return err
	})
	if err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}

	var rm metricdata.ResourceMetrics
	if err := rd.Collect(context.Background(), &rm); err != nil {
		t.Fatal(err)
	}
	seen := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			seen[m.Name] = true
		}
	}
	for _, want := range []string{"exportkit.registrations", "exportkit.resolution.total"} {
		if !seen[want] {
			t.Errorf("expected metric %s, got %v", want, seen)
		}
	}
}

func TestDiagnostics(t *testing.T) {
	cfg := newTestConfig("")
	cfg.Composition.Diagnostics.Enabled = true
	app := newTestApp(t, cfg, backendtest.NewCatalog(&backendtest.Counters{}))
	app.diagnostics.addr = "127.0.0.1:0"

	if app.DiagnosticsAddr() != "" {
		t.Error("expected no address before start")
	}
	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer app.Shutdown(context.Background())

	addr := app.DiagnosticsAddr()
	if addr == "" {
		t.Fatal("expected a bound address")
	}
	for _, path := range []string{"/exports", "/exports/backendtest.Greeter", "/health"} {
		resp, err := http.Get("http://" + addr + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s: expected 200, got %d", path, resp.StatusCode)
		}
	}
}

func TestSummary(t *testing.T) {
	cfg := newTestConfig("")
	cfg.Composition.Diagnostics.Enabled = true
	app := newTestApp(t, cfg, backendtest.NewCatalog(&backendtest.Counters{}))
	app.diagnostics.addr = "127.0.0.1:0"

	var buf bytes.Buffer
	app.Summary.SetOutput(&buf)
	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer app.Shutdown(context.Background())

	out := buf.String()
	for _, want := range []string{
		"test-svc v1.0.0 started",
		"Exports: backend=arena [composition]",
		"📦 Exports",
		"backendtest.Greeter → *backendtest.Greeting [shared]",
		"/exports/:contract",
		"🏥 Health Check",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in summary:\n%s", want, out)
		}
	}
}

func TestSummary_NoComponents(t *testing.T) {
	var buf bytes.Buffer
	s := NewSummary("svc", "0.1.0")
	s.SetOutput(&buf)
	s.DisplaySummary(nil, nil)
	if !strings.Contains(buf.String(), "No components registered") {
		t.Errorf("unexpected summary %q", buf.String())
	}
}

func TestRunHooks_StopRunsAll(t *testing.T) {
	var ran []int
	fail := func(i int) Hook {
		return func(context.Context) error {
			ran = append(ran, i)
			return fmt.Errorf("hook failed")
		}
	}

	err := runHooks(context.Background(), phaseStart, []Hook{fail(0), fail(1)})
	if err == nil || len(ran) != 1 {
		t.Fatalf("start hooks should stop at the first failure, ran %v", ran)
	}

	ran = nil
	err = runHooks(context.Background(), phaseStop, []Hook{fail(0), fail(1)})
	if err == nil || len(ran) != 2 {
		t.Fatalf("stop hooks should all run, ran %v", ran)
	}
	if !strings.Contains(err.Error(), "stop hook 1") {
		t.Errorf("expected indexed stop error, got %v", err)
	}
}
