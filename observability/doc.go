// Package observability adds OpenTelemetry tracing and metrics to export
// resolution.
//
// Tracing and metrics providers:
//
//	cfg := observability.Config{Service: "orders", Backend: "dig", SampleRate: 0.25}
//	tp, err := observability.InitTracer(ctx, cfg)
//	defer tp.Shutdown(ctx)
//
//	mp, err := observability.InitMeter(ctx, cfg)
//	defer mp.Shutdown(ctx)
//
// Instrumenting a provider:
//
//	metrics, err := observability.NewMetrics(observability.Meter("exportkit"))
//	p := observability.Instrument(container, observability.WithMetrics(metrics), observability.WithBackend("arena"))
//
// Every call on p gets a span and is counted by outcome. Scopes opened with
// BeginBoundary are instrumented as well.
package observability
