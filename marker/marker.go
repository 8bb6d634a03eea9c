// Package marker defines the family-neutral interfaces every export marker
// implements. The reader depends only on this package, so a project can use
// either marker family without linking the other.
//
// A marker is a zero-size field of the component struct; its struct tag
// carries the declared values:
//
//	type FileLogger struct {
//		_ classic.Export[Logger] `name:"file"`
//	}
//
// Marker methods must use value receivers so the marker type itself
// implements the interfaces.
package marker

import (
	"fmt"
	"reflect"
)

// Family identifies one of the two marker families.
type Family int

const (
	// Unknown is the zero family; no marker reports it.
	Unknown Family = iota
	// Classic markers export shared by default and use a creation policy.
	Classic
	// Light markers export non-shared by default and use Shared/NonShared.
	Light
)

func (f Family) String() string {
	switch f {
	case Classic:
		return "classic"
	case Light:
		return "light"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// Marker is implemented by every declarative marker.
type Marker interface {
	MarkerFamily() Family
}

// Export declares a contract the enclosing type fulfills. ExportedContract
// returns nil for the type's own identity.
type Export interface {
	Marker
	ExportedContract() reflect.Type
}

// Policy declares the sharing semantics of the enclosing type.
type Policy interface {
	Marker
	SharingPolicy() (shared bool, boundary string)
}

// Metadata contributes one key/value pair to every export of the enclosing type.
type Metadata interface {
	Marker
	MetadataEntry() (key string, value any)
}

// Initializer is implemented (on the pointer) by markers that validate or
// derive values once all tag properties are set.
type Initializer interface {
	InitMarker() error
}

var (
	exportType   = reflect.TypeFor[Export]()
	policyType   = reflect.TypeFor[Policy]()
	metadataType = reflect.TypeFor[Metadata]()
)

// Kind classifies a marker type.
type Kind int

const (
	KindNone Kind = iota
	KindExport
	KindPolicy
	KindMetadata
)

// KindOf returns the kind of marker t is. Export takes precedence.
func KindOf(t reflect.Type) Kind {
	switch {
	case t == nil:
		return KindNone
	case t.Implements(exportType):
		return KindExport
	case t.Implements(policyType):
		return KindPolicy
	case t.Implements(metadataType):
		return KindMetadata
	default:
		return KindNone
	}
}
