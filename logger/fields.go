package logger

import (
	"reflect"
	"time"
)

// Standard field key constants for structured logging.
const (
	FieldService     = "service"
	FieldComponent   = "component"
	FieldTraceID     = "trace_id"
	FieldOperation   = "operation"
	FieldError       = "error"
	FieldDuration    = "duration_ms"
	FieldContract    = "contract"
	FieldName        = "contract_name"
	FieldImpl        = "implementation"
	FieldBackend     = "backend"
	FieldKey         = "key"
	FieldFamily      = "family"
	FieldShared      = "shared"
	FieldBoundary    = "boundary"
	FieldRecordCount = "records"
)

// Fields builds a map[string]interface{} from alternating key-value pairs.
//
//	logger.Info("bound", logger.Fields("backend", "dig", "records", 12))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ContractFields describes a (contract type, contract name) pair.
func ContractFields(contract reflect.Type, name string) map[string]interface{} {
	m := map[string]interface{}{FieldContract: typeName(contract)}
	if name != "" {
		m[FieldName] = name
	}
	return m
}

// ImplFields describes an implementation type.
func ImplFields(impl reflect.Type) map[string]interface{} {
	return map[string]interface{}{FieldImpl: typeName(impl)}
}

// ErrorFields creates fields for an operation that failed.
func ErrorFields(op string, err error) map[string]interface{} {
	return map[string]interface{}{
		FieldOperation: op,
		FieldError:     err.Error(),
	}
}

// DurationFields creates fields for a timed operation.
func DurationFields(op string, d time.Duration) map[string]interface{} {
	return map[string]interface{}{
		FieldOperation: op,
		FieldDuration:  d.Milliseconds(),
	}
}

// Merge copies every field of extra into fields and returns fields.
func Merge(fields map[string]interface{}, extra ...map[string]interface{}) map[string]interface{} {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	for _, e := range extra {
		for k, v := range e {
			fields[k] = v
		}
	}
	return fields
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
