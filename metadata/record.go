package metadata

import (
	"reflect"
	"slices"

	"github.com/kbukum/exportkit/errors"
)

// ExportRecord is the immutable description of one exported implementation.
type ExportRecord struct {
	implType  reflect.Type
	contracts []View
	shared    bool
	boundary  string
}

// NewExportRecord validates and freezes a record. Maps are copied; a
// ContractType equal to impl is normalized away and duplicate contract
// pairs are rejected with DUPLICATE_CONTRACT.
func NewExportRecord(impl reflect.Type, contracts []Map, shared bool, boundary string) (ExportRecord, error) {
	if impl == nil {
		return ExportRecord{}, errors.InvalidDeclaration("<nil>", "implementation type is nil")
	}
	if len(contracts) == 0 {
		return ExportRecord{}, errors.InvalidDeclaration(impl.String(), "no exported contracts")
	}
	if !shared && boundary != "" {
		return ExportRecord{}, errors.InvalidDeclaration(impl.String(), "a sharing boundary requires a shared record")
	}

	seen := make(map[Contract]struct{}, len(contracts))
	views := make([]View, 0, len(contracts))
	for _, m := range contracts {
		cp := make(Map, len(m))
		for k, v := range m {
			cp[k] = v
		}
		if t, ok := cp[ContractTypeKey]; ok {
			ct, isType := t.(reflect.Type)
			if !isType || ct == nil {
				return ExportRecord{}, errors.InvalidDeclaration(impl.String(), "ContractType must be a reflect.Type")
			}
			if ct == impl {
				delete(cp, ContractTypeKey)
			}
		}
		if n, ok := cp[ContractNameKey]; ok {
			name, isString := n.(string)
			if !isString {
				return ExportRecord{}, errors.InvalidDeclaration(impl.String(), "ContractName must be a string")
			}
			if name == "" {
				delete(cp, ContractNameKey)
			}
		}
		v := NewView(cp)
		c := ContractOf(impl, v)
		if _, dup := seen[c]; dup {
			return ExportRecord{}, errors.DuplicateContract(impl.String(), c.String())
		}
		seen[c] = struct{}{}
		views = append(views, v)
	}

	return ExportRecord{implType: impl, contracts: views, shared: shared, boundary: boundary}, nil
}

// ImplementationType returns the exported implementation type.
func (r ExportRecord) ImplementationType() reflect.Type { return r.implType }

// Contracts returns the per-contract metadata in declaration order.
func (r ExportRecord) Contracts() []View { return slices.Clone(r.contracts) }

// IsShared reports whether every contract resolves to the same instance.
func (r ExportRecord) IsShared() bool { return r.shared }

// SharingBoundary returns the boundary of a shared record, or "".
func (r ExportRecord) SharingBoundary() string { return r.boundary }

// ContractList returns the effective contract of every entry.
func (r ExportRecord) ContractList() []Contract {
	out := make([]Contract, len(r.contracts))
	for i, v := range r.contracts {
		out[i] = ContractOf(r.implType, v)
	}
	return out
}

// OwnIdentityIndex returns the index of the entry exporting the type under
// its own identity, or -1.
func (r ExportRecord) OwnIdentityIndex() int {
	return slices.IndexFunc(r.contracts, func(v View) bool {
		return IsOwnIdentity(r.implType, v)
	})
}
