package observability

import (
	"context"
	"reflect"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/exportkit/facade"
	"github.com/kbukum/exportkit/metadata"
)

// Provider decorates a facade.Provider with spans and metrics. Boundary
// scopes it opens are decorated too.
type Provider struct {
	inner   facade.Provider
	metrics *Metrics
	backend string
	ctx     context.Context
	onClose func()
}

var (
	_ facade.BoundaryProvider = (*Provider)(nil)
	_ facade.Inspector        = (*Provider)(nil)
)

// Option configures an instrumented Provider.
type Option func(*Provider)

// WithMetrics records calls on m.
func WithMetrics(m *Metrics) Option {
	return func(p *Provider) { p.metrics = m }
}

// WithBackend sets the backend name attached to spans.
func WithBackend(name string) Option {
	return func(p *Provider) { p.backend = name }
}

// WithContext sets the parent context of the spans.
func WithContext(ctx context.Context) Option {
	return func(p *Provider) { p.ctx = ctx }
}

// Instrument wraps inner.
func Instrument(inner facade.Provider, opts ...Option) *Provider {
	p := &Provider{inner: inner, ctx: context.Background()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Unwrap returns the decorated provider.
func (p *Provider) Unwrap() facade.Provider { return p.inner }

func (p *Provider) start(operation string, t reflect.Type, name string) *Operation {
	op := StartOperation(p.ctx, SpanResolve, operation, metadata.Contract{Type: t, Name: name}.String(), p.metrics)
	op.span.SetAttributes(attribute.String(AttrBackend, p.backend))
	if name != "" {
		op.span.SetAttributes(attribute.String(AttrContractName, name))
	}
	return op
}

func (p *Provider) GetExportedValue(t reflect.Type, name string) (any, error) {
	op := p.start("GetExportedValue", t, name)
	v, err := p.inner.GetExportedValue(t, name)
	op.End(err)
	return v, err
}

func (p *Provider) GetExportedValueOrDefault(t reflect.Type, name string) (any, error) {
	op := p.start("GetExportedValueOrDefault", t, name)
	v, err := p.inner.GetExportedValueOrDefault(t, name)
	op.End(err)
	return v, err
}

func (p *Provider) TryGetExportedValue(t reflect.Type, name string) (any, bool) {
	op := p.start("TryGetExportedValue", t, name)
	v, ok := p.inner.TryGetExportedValue(t, name)
	op.span.SetAttributes(attribute.Bool("exportkit.found", ok))
	op.End(nil)
	return v, ok
}

func (p *Provider) GetExportedValues(t reflect.Type, name string) ([]any, error) {
	op := p.start("GetExportedValues", t, name)
	vs, err := p.inner.GetExportedValues(t, name)
	op.SetMatches(len(vs))
	op.End(err)
	return vs, err
}

// GetExports lists lazily. The span covers the listing only.
func (p *Provider) GetExports(t reflect.Type, name string) []*facade.Export {
	op := StartOperation(p.ctx, SpanList, "GetExports", metadata.Contract{Type: t, Name: name}.String(), p.metrics)
	exports := p.inner.GetExports(t, name)
	op.SetMatches(len(exports))
	op.End(nil)
	return exports
}

func (p *Provider) OnExportsChanged(fn func(facade.ExportsChangedEvent)) func() {
	return p.inner.OnExportsChanged(fn)
}

// BeginBoundary opens a scope on the decorated provider and decorates it.
func (p *Provider) BeginBoundary(names ...string) (facade.Provider, error) {
	ctx, span := StartSpan(p.ctx, SpanScope)
	span.SetAttributes(attribute.StringSlice(AttrBoundary, names), attribute.String(AttrBackend, p.backend))
	defer span.End()

	scope, err := facade.BeginBoundary(p.inner, names...)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	child := &Provider{inner: scope, metrics: p.metrics, backend: p.backend, ctx: ctx}
	if p.metrics != nil {
		p.metrics.RecordScope(ctx, 1)
		child.onClose = func() { p.metrics.RecordScope(ctx, -1) }
	}
	return child, nil
}

// Registrations lists the registrations of the decorated provider, or nil
// when it cannot list them.
func (p *Provider) Registrations() []facade.RegistrationInfo {
	if in, ok := p.inner.(facade.Inspector); ok {
		return in.Registrations()
	}
	return nil
}

func (p *Provider) Close() error {
	if p.onClose != nil {
		p.onClose()
		p.onClose = nil
	}
	return p.inner.Close()
}
