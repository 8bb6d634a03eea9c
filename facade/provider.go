package facade

import (
	"reflect"
	"time"

	"github.com/kbukum/exportkit/metadata"
)

// Factory creates one instance of a registration. p is the provider the
// instance is resolved through; constructors resolve their dependencies from it.
type Factory func(p Provider) (any, error)

// Provider resolves exported values. The contract name "" means no name.
type Provider interface {
	GetExportedValue(t reflect.Type, name string) (any, error)
	GetExportedValueOrDefault(t reflect.Type, name string) (any, error)
	TryGetExportedValue(t reflect.Type, name string) (any, bool)
	GetExportedValues(t reflect.Type, name string) ([]any, error)
	GetExports(t reflect.Type, name string) []*Export
	// OnExportsChanged subscribes to registration changes. Backends that
	// cannot observe changes never call fn.
	OnExportsChanged(fn func(ExportsChangedEvent)) (unsubscribe func())
	// Close disposes every shared instance the provider created.
	Close() error
}

// BoundaryProvider is implemented by providers that can open sharing
// boundary scopes.
type BoundaryProvider interface {
	Provider
	BeginBoundary(names ...string) (Provider, error)
}

// ExportsChangedEvent describes a change of the registration set.
type ExportsChangedEvent struct {
	Added []metadata.Contract
	At    time.Time
}

// RegistrationInfo describes one registration without instantiating it.
type RegistrationInfo struct {
	Key            string
	Contract       metadata.Contract
	Implementation reflect.Type
	Shared         bool
	Boundary       string
	// Forward is the master key an alias resolves through.
	Forward  string
	Hidden   bool
	Created  bool
	Metadata metadata.View
}

// Inspector is implemented by providers that can list their registrations.
type Inspector interface {
	Registrations() []RegistrationInfo
}
