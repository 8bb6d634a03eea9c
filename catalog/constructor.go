package catalog

import (
	"reflect"

	"github.com/kbukum/exportkit/errors"
	"github.com/kbukum/exportkit/facade"
)

var (
	errorType    = reflect.TypeFor[error]()
	providerType = reflect.TypeFor[facade.Provider]()
)

func validateConstructor(fn reflect.Value) (reflect.Type, error) {
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		return nil, errors.InvalidConstructor(describe(fn), "not a function")
	}
	if fn.IsNil() {
		return nil, errors.InvalidConstructor(describe(fn), "nil function")
	}
	ft := fn.Type()
	if ft.IsVariadic() {
		return nil, errors.InvalidConstructor(ft.String(), "variadic constructors are not supported")
	}
	switch ft.NumOut() {
	case 1:
	case 2:
		if ft.Out(1) != errorType {
			return nil, errors.InvalidConstructor(ft.String(), "second result must be error")
		}
	default:
		return nil, errors.InvalidConstructor(ft.String(), "must return T or (T, error)")
	}
	if ft.Out(0) == errorType {
		return nil, errors.InvalidConstructor(ft.String(), "first result must not be error")
	}
	return ft.Out(0), nil
}

// constructorFactory resolves each parameter through the provider and calls fn.
// A facade.Provider parameter receives the provider itself.
func constructorFactory(fn reflect.Value) facade.Factory {
	ft := fn.Type()
	return func(p facade.Provider) (any, error) {
		args := make([]reflect.Value, ft.NumIn())
		for i := range args {
			in := ft.In(i)
			if in == providerType {
				args[i] = reflect.ValueOf(&p).Elem()
				continue
			}
			dep, err := p.GetExportedValue(in, "")
			if err != nil {
				return nil, err
			}
			if dep == nil {
				args[i] = reflect.Zero(in)
				continue
			}
			args[i] = reflect.ValueOf(dep)
			if !args[i].Type().AssignableTo(in) {
				return nil, errors.ContractTypeMismatch(args[i].Type().String(), in.String())
			}
		}
		out := fn.Call(args)
		if len(out) == 2 && !out[1].IsNil() {
			return nil, out[1].Interface().(error)
		}
		return out[0].Interface(), nil
	}
}

func describe(v reflect.Value) string {
	if !v.IsValid() {
		return "<nil>"
	}
	return v.Type().String()
}
