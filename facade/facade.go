package facade

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/kbukum/exportkit/errors"
	"github.com/kbukum/exportkit/metadata"
)

// Source lists the exports of a backend matching a contract. Implementations
// filter names with metadata.ContractNameMatches.
type Source interface {
	Exports(t reflect.Type, name string) []*Export
}

// Option configures a Facade.
type Option func(*Facade)

// WithHub sets the hub change events are published on.
func WithHub(h *Hub) Option {
	return func(f *Facade) { f.hub = h }
}

// WithCloser sets the function Close delegates to.
func WithCloser(fn func() error) Option {
	return func(f *Facade) { f.closer = fn }
}

// Facade implements Provider over a Source.
type Facade struct {
	source    Source
	hub       *Hub
	closer    func() error
	closeOnce sync.Once
	closeErr  error
}

var _ Provider = (*Facade)(nil)

// New creates a facade over source.
func New(source Source, opts ...Option) *Facade {
	f := &Facade{source: source}
	for _, opt := range opts {
		opt(f)
	}
	if f.hub == nil {
		f.hub = NewHub()
	}
	return f
}

func (f *Facade) GetExportedValue(t reflect.Type, name string) (any, error) {
	exports := f.source.Exports(t, name)
	switch len(exports) {
	case 0:
		return nil, errors.ExportNotFound(contractString(t, name))
	case 1:
		return exports[0].Value()
	default:
		return nil, errors.AmbiguousExport(contractString(t, name), len(exports))
	}
}

func (f *Facade) GetExportedValueOrDefault(t reflect.Type, name string) (any, error) {
	exports := f.source.Exports(t, name)
	switch len(exports) {
	case 0:
		return nil, nil
	case 1:
		return exports[0].Value()
	default:
		return nil, errors.AmbiguousExport(contractString(t, name), len(exports))
	}
}

func (f *Facade) TryGetExportedValue(t reflect.Type, name string) (any, bool) {
	exports := f.source.Exports(t, name)
	if len(exports) != 1 {
		return nil, false
	}
	v, err := exports[0].Value()
	if err != nil {
		return nil, false
	}
	return v, true
}

// GetExportedValues creates every matching value. Construction errors are
// returned as the backend produced them.
func (f *Facade) GetExportedValues(t reflect.Type, name string) ([]any, error) {
	exports := f.source.Exports(t, name)
	values := make([]any, 0, len(exports))
	for _, e := range exports {
		v, err := e.Value()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

func (f *Facade) GetExports(t reflect.Type, name string) []*Export {
	return f.source.Exports(t, name)
}

func (f *Facade) OnExportsChanged(fn func(ExportsChangedEvent)) func() {
	return f.hub.Subscribe(fn)
}

// Close runs the configured closer once.
func (f *Facade) Close() error {
	f.closeOnce.Do(func() {
		if f.closer != nil {
			f.closeErr = f.closer()
		}
	})
	return f.closeErr
}

// BeginBoundary opens a sharing boundary scope on p.
func BeginBoundary(p Provider, names ...string) (Provider, error) {
	bp, ok := p.(BoundaryProvider)
	if !ok {
		return nil, errors.BoundaryNotSupported(fmt.Sprintf("%T", p))
	}
	return bp.BeginBoundary(names...)
}

func contractString(t reflect.Type, name string) string {
	return metadata.Contract{Type: t, Name: name}.String()
}
