package metadata

import (
	"maps"
	"slices"

	"github.com/go-viper/mapstructure/v2"

	"github.com/kbukum/exportkit/errors"
)

// Map is a mutable metadata map used while a record is being built.
type Map map[string]any

// View is a read-only view over a metadata map.
type View interface {
	// GetValue returns the value stored under name or METADATA_KEY_NOT_FOUND.
	GetValue(name string) (any, error)
	// TryGetValue returns the value stored under name and whether it exists.
	TryGetValue(name string) (any, bool)
	// Keys returns all keys in sorted order.
	Keys() []string
	// AsMap returns a copy of the underlying map.
	AsMap() Map
}

type view struct {
	m Map
}

// NewView copies m into an immutable View.
func NewView(m Map) View {
	return &view{m: maps.Clone(m)}
}

// Empty is a view without any entries.
var Empty View = &view{}

func (v *view) GetValue(name string) (any, error) {
	val, ok := v.m[name]
	if !ok {
		return nil, errors.MetadataKeyNotFound(name)
	}
	return val, nil
}

func (v *view) TryGetValue(name string) (any, bool) {
	val, ok := v.m[name]
	return val, ok
}

func (v *view) Keys() []string {
	return slices.Sorted(maps.Keys(v.m))
}

func (v *view) AsMap() Map {
	if v.m == nil {
		return Map{}
	}
	return maps.Clone(v.m)
}

// Decode decodes a view into a statically typed metadata struct. Field names
// match keys case-insensitively; a `mapstructure` tag overrides the key.
//
//	type ViewMetadata struct {
//		Region string
//		Order  int
//	}
//	md, err := metadata.Decode[ViewMetadata](export.Metadata())
func Decode[M any](v View) (M, error) {
	var out M
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return out, err
	}
	if err := dec.Decode(map[string]any(v.AsMap())); err != nil {
		return out, errors.MetadataConversion("metadata", typeNameOf[M](), err.Error()).WithCause(err)
	}
	return out, nil
}
