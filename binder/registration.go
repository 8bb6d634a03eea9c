package binder

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"

	"github.com/kbukum/exportkit/facade"
	"github.com/kbukum/exportkit/metadata"
)

// Lifetime is the instance sharing of a registration.
type Lifetime struct {
	Shared bool
	// Boundary limits sharing to scopes opened for this boundary.
	Boundary string
}

func (l Lifetime) String() string {
	switch {
	case !l.Shared:
		return "transient"
	case l.Boundary != "":
		return "shared(" + l.Boundary + ")"
	default:
		return "shared"
	}
}

// Registration is one backend registration.
type Registration struct {
	Key                string
	ImplementationType reflect.Type
	Lifetime           Lifetime
	// Factory creates the instance. Aliases have none.
	Factory facade.Factory
	// Forward is the master key an alias resolves through.
	Forward string
	// Contract is nil for a hidden master.
	Contract *metadata.Contract
	Metadata metadata.View
}

// IsAlias reports whether r forwards to a master registration.
func (r Registration) IsAlias() bool { return r.Forward != "" }

// IsHidden reports whether r is a synthetic master no query can match.
func (r Registration) IsHidden() bool { return r.Contract == nil }

// Info converts r to its diagnostic description.
func (r Registration) Info() facade.RegistrationInfo {
	info := facade.RegistrationInfo{
		Key:            r.Key,
		Implementation: r.ImplementationType,
		Shared:         r.Lifetime.Shared,
		Boundary:       r.Lifetime.Boundary,
		Forward:        r.Forward,
		Hidden:         r.IsHidden(),
		Metadata:       r.Metadata,
	}
	if r.Contract != nil {
		info.Contract = *r.Contract
	}
	return info
}

var masterNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/kbukum/exportkit/master"))

// MasterKey returns the synthetic master key of impl.
func MasterKey(impl reflect.Type) string {
	return "master:" + uuid.NewSHA1(masterNamespace, []byte(QualifiedName(impl))).String()
}

// KeyFor returns the registration key of contract c implemented by impl.
func KeyFor(c metadata.Contract, impl reflect.Type) string {
	key := QualifiedName(c.Type)
	if c.Name != "" {
		key += fmt.Sprintf("[%s]", c.Name)
	}
	if c.Type != impl {
		key += "@" + QualifiedName(impl)
	}
	return key
}

// QualifiedName names t by its package path, unlike reflect.Type.String.
func QualifiedName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	switch t.Kind() {
	case reflect.Pointer:
		return "*" + QualifiedName(t.Elem())
	case reflect.Slice:
		return "[]" + QualifiedName(t.Elem())
	default:
		return t.String()
	}
}
