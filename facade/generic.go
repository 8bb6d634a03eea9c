package facade

import (
	"fmt"
	"reflect"

	"github.com/kbukum/exportkit/errors"
	"github.com/kbukum/exportkit/metadata"
)

// GetExportedValue resolves exactly one export of contract T.
func GetExportedValue[T any](p Provider, name ...string) (T, error) {
	v, err := p.GetExportedValue(reflect.TypeFor[T](), contractName(name))
	if err != nil {
		var zero T
		return zero, err
	}
	return cast[T](v)
}

// MustGetExportedValue is like GetExportedValue but panics on error.
func MustGetExportedValue[T any](p Provider, name ...string) T {
	v, err := GetExportedValue[T](p, name...)
	if err != nil {
		panic(fmt.Sprintf("exportkit: %v", err))
	}
	return v
}

// GetExportedValueOrDefault resolves zero or one export of contract T.
func GetExportedValueOrDefault[T any](p Provider, name ...string) (T, error) {
	var zero T
	v, err := p.GetExportedValueOrDefault(reflect.TypeFor[T](), contractName(name))
	if err != nil || v == nil {
		return zero, err
	}
	return cast[T](v)
}

// TryGetExportedValue resolves exactly one export of contract T and reports
// whether it succeeded.
func TryGetExportedValue[T any](p Provider, name ...string) (T, bool) {
	var zero T
	v, ok := p.TryGetExportedValue(reflect.TypeFor[T](), contractName(name))
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// GetExportedValues resolves every export of contract T.
func GetExportedValues[T any](p Provider, name ...string) ([]T, error) {
	values, err := p.GetExportedValues(reflect.TypeFor[T](), contractName(name))
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(values))
	for _, v := range values {
		t, err := cast[T](v)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Lazy is a typed view of an Export.
type Lazy[T any] struct {
	export *Export
}

// Value creates the value on first access.
func (l Lazy[T]) Value() (T, error) {
	v, err := l.export.Value()
	if err != nil {
		var zero T
		return zero, err
	}
	return cast[T](v)
}

// Metadata returns the export metadata without creating the value.
func (l Lazy[T]) Metadata() metadata.View { return l.export.Metadata() }

// IsValueCreated reports whether the value has been created.
func (l Lazy[T]) IsValueCreated() bool { return l.export.IsValueCreated() }

// GetExports returns the lazy exports of contract T.
func GetExports[T any](p Provider, name ...string) []Lazy[T] {
	exports := p.GetExports(reflect.TypeFor[T](), contractName(name))
	out := make([]Lazy[T], len(exports))
	for i, e := range exports {
		out[i] = Lazy[T]{export: e}
	}
	return out
}

// LazyWithMetadata is a lazy export with metadata decoded into M.
type LazyWithMetadata[T, M any] struct {
	Lazy[T]
	Meta M
}

// GetExportsWithMetadata returns the lazy exports of contract T with their
// metadata decoded into M. Values are not created.
func GetExportsWithMetadata[T, M any](p Provider, name ...string) ([]LazyWithMetadata[T, M], error) {
	exports := GetExports[T](p, name...)
	out := make([]LazyWithMetadata[T, M], 0, len(exports))
	for _, l := range exports {
		m, err := metadata.Decode[M](l.Metadata())
		if err != nil {
			return nil, err
		}
		out = append(out, LazyWithMetadata[T, M]{Lazy: l, Meta: m})
	}
	return out, nil
}

func cast[T any](v any) (T, error) {
	t, ok := v.(T)
	if !ok {
		return t, errors.ContractTypeMismatch(fmt.Sprintf("%T", v), reflect.TypeFor[T]().String())
	}
	return t, nil
}

func contractName(name []string) string {
	if len(name) > 0 {
		return name[0]
	}
	return ""
}
