package metadata

import (
	"fmt"
	"reflect"
)

// Reserved metadata keys.
const (
	ContractTypeKey = "ContractType"
	ContractNameKey = "ContractName"
)

// Contract is the (type, name) pair a consumer asks for.
type Contract struct {
	Type reflect.Type
	Name string
}

func (c Contract) String() string {
	t := "<nil>"
	if c.Type != nil {
		t = c.Type.String()
	}
	if c.Name == "" {
		return t
	}
	return fmt.Sprintf("%s(%q)", t, c.Name)
}

// Matches reports whether the contract satisfies a (type, name) query.
func (c Contract) Matches(t reflect.Type, name string) bool {
	return c.Type == t && c.Name == name
}

// GetContractName returns the contract name stored in v, or "".
func GetContractName(v View) string {
	if v == nil {
		return ""
	}
	raw, ok := v.TryGetValue(ContractNameKey)
	if !ok {
		return ""
	}
	name, _ := raw.(string)
	return name
}

// GetContractType returns the contract type stored in v, or nil when absent.
func GetContractType(v View) reflect.Type {
	if v == nil {
		return nil
	}
	raw, ok := v.TryGetValue(ContractTypeKey)
	if !ok {
		return nil
	}
	t, _ := raw.(reflect.Type)
	return t
}

// ContractNameMatches reports whether the contract name of v equals query.
// An empty query and an absent ContractName are equivalent.
func ContractNameMatches(v View, query string) bool {
	return GetContractName(v) == query
}

// ContractOf computes the effective contract of one entry of impl.
func ContractOf(impl reflect.Type, v View) Contract {
	t := GetContractType(v)
	if t == nil {
		t = impl
	}
	return Contract{Type: t, Name: GetContractName(v)}
}

// IsOwnIdentity reports whether v exports impl under its own type without a name.
func IsOwnIdentity(impl reflect.Type, v View) bool {
	c := ContractOf(impl, v)
	return c.Type == impl && c.Name == ""
}

// GetDefaultMetadata builds the metadata of a contract registered without
// extra metadata. A nil contractType means impl.
func GetDefaultMetadata(impl, contractType reflect.Type, contractName string) Map {
	if contractType == nil {
		contractType = impl
	}
	m := Map{ContractTypeKey: contractType}
	if contractName != "" {
		m[ContractNameKey] = contractName
	}
	return m
}

// WithDefaults returns v with ContractType filled in when absent.
func WithDefaults(v View, impl reflect.Type) View {
	if GetContractType(v) != nil {
		return v
	}
	m := v.AsMap()
	m[ContractTypeKey] = impl
	return NewView(m)
}

func typeNameOf[T any]() string {
	return reflect.TypeFor[T]().String()
}
