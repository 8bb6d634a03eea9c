package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/exportkit/logger"
)

const (
	defaultTracerName = "github.com/kbukum/exportkit/observability"
	defaultEndpoint   = "localhost:4318"
	defaultInterval   = 15 * time.Second
)

// Config holds the exporter settings shared by the tracer and meter
// providers.
type Config struct {
	Service     string
	Version     string
	Environment string
	// Backend is attached to the resource as exportkit.backend.
	Backend string
	// Endpoint is the OTLP HTTP collector host:port.
	Endpoint string
	Insecure bool
	// SampleRate is the root sampling ratio. 0 disables tracing of new
	// traces; sampled parents are always followed.
	SampleRate float64
	// Interval is the metric export interval.
	Interval time.Duration
}

func (c Config) withDefaults() Config {
	if c.Endpoint == "" {
		c.Endpoint = defaultEndpoint
	}
	if c.Interval <= 0 {
		c.Interval = defaultInterval
	}
	if c.Version == "" {
		c.Version = "dev"
	}
	return c
}

// Sampler returns the parent-based sampler for SampleRate.
func (c Config) Sampler() sdktrace.Sampler {
	var root sdktrace.Sampler
	switch {
	case c.SampleRate >= 1:
		root = sdktrace.AlwaysSample()
	case c.SampleRate <= 0:
		root = sdktrace.NeverSample()
	default:
		root = sdktrace.TraceIDRatioBased(c.SampleRate)
	}
	return sdktrace.ParentBased(root)
}

func (c Config) resource() (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(c.Service),
		semconv.ServiceVersion(c.Version),
		semconv.DeploymentEnvironment(c.Environment),
	}
	if c.Backend != "" {
		attrs = append(attrs, attribute.String(AttrBackend, c.Backend))
	}
	return resource.Merge(resource.Default(), resource.NewWithAttributes(semconv.SchemaURL, attrs...))
}

// InitTracer installs a global OTLP tracer provider with trace-context and
// baggage propagation. The caller shuts it down.
func InitTracer(ctx context.Context, cfg Config) (*sdktrace.TracerProvider, error) {
	cfg = cfg.withDefaults()

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("observability: trace exporter: %w", err)
	}
	res, err := cfg.resource()
	if err != nil {
		return nil, fmt.Errorf("observability: resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(cfg.Sampler()),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	logger.Get("telemetry").Info("Tracer installed", logger.Fields(
		logger.FieldService, cfg.Service,
		logger.FieldBackend, cfg.Backend,
		"endpoint", cfg.Endpoint,
		"sampler", cfg.Sampler().Description(),
	))
	return tp, nil
}

// Tracer returns a named tracer from the global provider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

// StartSpan starts a span on the default tracer.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer(defaultTracerName).Start(ctx, name, opts...)
}

// SetSpanError records err on the span in ctx.
func SetSpanError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.RecordError(err)
	}
}

// Span names.
const (
	SpanScan    = "exportkit.scan"
	SpanBind    = "exportkit.bind"
	SpanResolve = "exportkit.resolve"
	SpanList    = "exportkit.exports"
	SpanScope   = "exportkit.boundary"
)

// Attribute keys.
const (
	AttrOperation    = "exportkit.operation"
	AttrContract     = "exportkit.contract"
	AttrContractName = "exportkit.contract_name"
	AttrBackend      = "exportkit.backend"
	AttrBoundary     = "exportkit.boundary"
	AttrMatches      = "exportkit.matches"
	AttrErrorCode    = "exportkit.error_code"
	AttrOutcome      = "exportkit.outcome"
)
