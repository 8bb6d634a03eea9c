package diagnostics

import (
	"fmt"
	"reflect"

	"github.com/kbukum/exportkit/binder"
	"github.com/kbukum/exportkit/facade"
	"github.com/kbukum/exportkit/metadata"
)

// ExportView is the JSON form of a registration.
type ExportView struct {
	Key            string         `json:"key"`
	Contract       string         `json:"contract,omitempty"`
	ContractName   string         `json:"contract_name,omitempty"`
	Implementation string         `json:"implementation"`
	Shared         bool           `json:"shared"`
	Boundary       string         `json:"boundary,omitempty"`
	Forward        string         `json:"forward,omitempty"`
	Hidden         bool           `json:"hidden,omitempty"`
	Created        bool           `json:"created"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

func newExportView(info facade.RegistrationInfo) ExportView {
	v := ExportView{
		Key:            info.Key,
		ContractName:   info.Contract.Name,
		Implementation: binder.QualifiedName(info.Implementation),
		Shared:         info.Shared,
		Boundary:       info.Boundary,
		Forward:        info.Forward,
		Hidden:         info.Hidden,
		Created:        info.Created,
		Metadata:       metadataJSON(info.Metadata),
	}
	if info.Contract.Type != nil {
		v.Contract = binder.QualifiedName(info.Contract.Type)
	}
	return v
}

// matchesContract accepts the short reflect string or the qualified name.
func matchesContract(info facade.RegistrationInfo, contract string) bool {
	t := info.Contract.Type
	if t == nil || info.Hidden {
		return false
	}
	return t.String() == contract || binder.QualifiedName(t) == contract
}

// metadataJSON renders a view with types replaced by their qualified names.
func metadataJSON(v metadata.View) map[string]any {
	if v == nil {
		return nil
	}
	keys := v.Keys()
	if len(keys) == 0 {
		return nil
	}
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		val, _ := v.TryGetValue(k)
		out[k] = jsonValue(val)
	}
	return out
}

func jsonValue(val any) any {
	if val == nil {
		return nil
	}
	if t, ok := val.(reflect.Type); ok {
		return binder.QualifiedName(t)
	}

	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return val
	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = jsonValue(rv.Index(i).Interface())
		}
		return items
	default:
		return fmt.Sprint(val)
	}
}
