// Package light provides the lightweight marker family. Exports declared with
// it create a new instance per resolution unless the type carries Shared.
package light

import (
	"reflect"

	"github.com/kbukum/exportkit/marker"
)

// Export exports the enclosing type under contract T.
type Export[T any] struct{}

func (Export[T]) MarkerFamily() marker.Family { return marker.Light }

func (Export[T]) ExportedContract() reflect.Type { return reflect.TypeFor[T]() }

// ExportSelf exports the enclosing type under its own identity.
type ExportSelf struct{}

func (ExportSelf) MarkerFamily() marker.Family { return marker.Light }

func (ExportSelf) ExportedContract() reflect.Type { return nil }

// Shared makes every export of the enclosing type resolve to one instance,
// optionally only within the named sharing boundary.
//
//	_ light.Shared `boundary:"request"`
type Shared struct {
	Boundary string
}

func (Shared) MarkerFamily() marker.Family { return marker.Light }

func (s Shared) SharingPolicy() (bool, string) { return true, s.Boundary }

// NonShared states the default explicitly.
type NonShared struct{}

func (NonShared) MarkerFamily() marker.Family { return marker.Light }

func (NonShared) SharingPolicy() (bool, string) { return false, "" }

// ExportMetadata adds Name=Value to every export of the enclosing type.
type ExportMetadata struct {
	Name  string
	Value string
}

func (ExportMetadata) MarkerFamily() marker.Family { return marker.Light }

func (m ExportMetadata) MetadataEntry() (string, any) { return m.Name, m.Value }
