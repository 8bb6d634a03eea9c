// Package classic provides the classic marker family. Exports declared with
// it are shared unless a PartCreationPolicy says otherwise.
package classic

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/kbukum/exportkit/marker"
)

// Export exports the enclosing type under contract T. Custom export markers
// embed it and add exported fields that become metadata.
//
//	type ViewExport struct {
//		classic.Export[View]
//		Region string
//		Order  int
//	}
type Export[T any] struct{}

func (Export[T]) MarkerFamily() marker.Family { return marker.Classic }

func (Export[T]) ExportedContract() reflect.Type { return reflect.TypeFor[T]() }

// ExportSelf exports the enclosing type under its own identity.
type ExportSelf struct{}

func (ExportSelf) MarkerFamily() marker.Family { return marker.Classic }

func (ExportSelf) ExportedContract() reflect.Type { return nil }

// CreationPolicy selects how instances of a part are created.
type CreationPolicy int

const (
	Any CreationPolicy = iota
	Shared
	NonShared
)

var policyNames = []string{"Any", "Shared", "NonShared"}

func (p CreationPolicy) String() string {
	if int(p) < len(policyNames) && p >= 0 {
		return policyNames[p]
	}
	return fmt.Sprintf("CreationPolicy(%d)", int(p))
}

// UnmarshalText parses a policy name, case-insensitively.
func (p *CreationPolicy) UnmarshalText(text []byte) error {
	for i, name := range policyNames {
		if strings.EqualFold(name, string(text)) {
			*p = CreationPolicy(i)
			return nil
		}
	}
	return fmt.Errorf("unknown creation policy %q", text)
}

// PartCreationPolicy sets the creation policy of the enclosing type.
//
//	_ classic.PartCreationPolicy `policy:"NonShared"`
type PartCreationPolicy struct {
	Policy CreationPolicy
}

func (PartCreationPolicy) MarkerFamily() marker.Family { return marker.Classic }

func (p PartCreationPolicy) SharingPolicy() (bool, string) {
	return p.Policy != NonShared, ""
}

// ExportMetadata adds Name=Value to every export of the enclosing type.
//
//	_ classic.ExportMetadata `name:"Display" value:"File logger"`
type ExportMetadata struct {
	Name  string
	Value string
}

func (ExportMetadata) MarkerFamily() marker.Family { return marker.Classic }

func (m ExportMetadata) MetadataEntry() (string, any) { return m.Name, m.Value }
