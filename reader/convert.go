package reader

import (
	"encoding"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/cast"
)

var (
	reflectTypeType     = reflect.TypeFor[reflect.Type]()
	durationType        = reflect.TypeFor[time.Duration]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// converter turns tag descriptors into runtime values of a property type.
type converter struct {
	types map[string]reflect.Type
}

func newConverter() *converter {
	c := &converter{types: make(map[string]reflect.Type)}
	c.register(
		reflect.TypeFor[string](), reflect.TypeFor[bool](),
		reflect.TypeFor[int](), reflect.TypeFor[int64](),
		reflect.TypeFor[float64](), reflect.TypeFor[any](),
		reflect.TypeFor[error](), durationType,
	)
	return c
}

func (c *converter) register(types ...reflect.Type) {
	for _, t := range types {
		if t == nil {
			continue
		}
		if t.Kind() == reflect.Pointer && t.Elem().Name() != "" {
			c.register(t.Elem())
		}
		c.types[t.String()] = t
		if t.Name() != "" && t.PkgPath() != "" {
			c.types[t.PkgPath()+"."+t.Name()] = t
		}
	}
}

// convert maps raw onto a value of type target:
//
//	reflect.Type          type lookup
//	TextUnmarshaler       UnmarshalText (enums)
//	time.Duration         duration syntax
//	string kinds          as is
//	bool, ints, floats    spf13/cast, overflow checked
//	slices, arrays        comma separated, elements converted recursively
//
// Any other shape is an error.
func (c *converter) convert(raw string, target reflect.Type) (reflect.Value, error) {
	if target == reflectTypeType {
		t, ok := c.types[strings.TrimSpace(raw)]
		if !ok {
			return reflect.Value{}, fmt.Errorf("unknown type %q", raw)
		}
		return reflect.ValueOf(&t).Elem(), nil
	}
	if reflect.PointerTo(target).Implements(textUnmarshalerType) {
		v := reflect.New(target)
		if err := v.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(raw)); err != nil {
			return reflect.Value{}, err
		}
		return v.Elem(), nil
	}
	if target.Kind() == reflect.Pointer && target.Implements(textUnmarshalerType) {
		v := reflect.New(target.Elem())
		if err := v.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(raw)); err != nil {
			return reflect.Value{}, err
		}
		return v, nil
	}
	if target == durationType {
		d, err := time.ParseDuration(strings.TrimSpace(raw))
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(d), nil
	}

	switch target.Kind() {
	case reflect.String:
		return reflect.ValueOf(raw).Convert(target), nil
	case reflect.Bool:
		b, err := cast.ToBoolE(strings.TrimSpace(raw))
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(b).Convert(target), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := cast.ToInt64E(strings.TrimSpace(raw))
		if err != nil {
			return reflect.Value{}, err
		}
		if reflect.Zero(target).OverflowInt(n) {
			return reflect.Value{}, fmt.Errorf("%d overflows %s", n, target)
		}
		return reflect.ValueOf(n).Convert(target), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		s := strings.TrimSpace(raw)
		if strings.HasPrefix(s, "-") {
			return reflect.Value{}, fmt.Errorf("negative value %s for %s", s, target)
		}
		n, err := cast.ToUint64E(s)
		if err != nil {
			return reflect.Value{}, err
		}
		if reflect.Zero(target).OverflowUint(n) {
			return reflect.Value{}, fmt.Errorf("%d overflows %s", n, target)
		}
		return reflect.ValueOf(n).Convert(target), nil
	case reflect.Float32, reflect.Float64:
		f, err := cast.ToFloat64E(strings.TrimSpace(raw))
		if err != nil {
			return reflect.Value{}, err
		}
		if reflect.Zero(target).OverflowFloat(f) {
			return reflect.Value{}, fmt.Errorf("%g overflows %s", f, target)
		}
		return reflect.ValueOf(f).Convert(target), nil
	case reflect.Slice:
		parts, err := c.elements(raw, target.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.MakeSlice(target, len(parts), len(parts))
		for i, p := range parts {
			out.Index(i).Set(p)
		}
		return out, nil
	case reflect.Array:
		parts, err := c.elements(raw, target.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		if len(parts) != target.Len() {
			return reflect.Value{}, fmt.Errorf("%s needs %d elements, got %d", target, target.Len(), len(parts))
		}
		out := reflect.New(target).Elem()
		for i, p := range parts {
			out.Index(i).Set(p)
		}
		return out, nil
	default:
		return reflect.Value{}, fmt.Errorf("unsupported property type %s", target)
	}
}

func (c *converter) elements(raw string, elem reflect.Type) ([]reflect.Value, error) {
	if k := elem.Kind(); (k == reflect.Slice || k == reflect.Array) && !isScalarLike(elem) {
		return nil, fmt.Errorf("nested collections are not supported")
	}
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	fields := strings.Split(raw, ",")
	out := make([]reflect.Value, 0, len(fields))
	for _, f := range fields {
		v, err := c.convert(strings.TrimSpace(f), elem)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// isScalarLike reports collection types that parse from a single token.
func isScalarLike(t reflect.Type) bool {
	return reflect.PointerTo(t).Implements(textUnmarshalerType)
}
