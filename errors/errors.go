package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified error type of the registry.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the status the diagnostics endpoint reports for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context (contract, implementation, key ...).
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an AppError with the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// Sentinels for errors.Is. They carry only a code; never return them directly.
var (
	ErrMetadataConversion   = &AppError{Code: ErrCodeMetadataConversion}
	ErrDuplicateContract    = &AppError{Code: ErrCodeDuplicateContract}
	ErrInvalidDeclaration   = &AppError{Code: ErrCodeInvalidDeclaration}
	ErrContractTypeMismatch = &AppError{Code: ErrCodeContractTypeMismatch}
	ErrInvalidConstructor   = &AppError{Code: ErrCodeInvalidConstructor}
	ErrContainerSealed      = &AppError{Code: ErrCodeContainerSealed}
	ErrExportNotFound       = &AppError{Code: ErrCodeExportNotFound}
	ErrAmbiguousExport      = &AppError{Code: ErrCodeAmbiguousExport}
	ErrMetadataKeyNotFound  = &AppError{Code: ErrCodeMetadataKeyNotFound}
	ErrCircularDependency   = &AppError{Code: ErrCodeCircularDependency}
	ErrBoundaryNotSupported = &AppError{Code: ErrCodeBoundaryNotSupported}
	ErrInvalidInput         = &AppError{Code: ErrCodeInvalidInput}
)

// --- Scan-time constructors ---

// MetadataConversion reports a descriptor that cannot become a runtime value.
func MetadataConversion(marker, property, reason string) *AppError {
	return &AppError{
		Code:       ErrCodeMetadataConversion,
		Message:    fmt.Sprintf("cannot convert %s.%s: %s", marker, property, reason),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"marker": marker, "property": property},
	}
}

// DuplicateContract reports a type exporting one contract pair twice.
func DuplicateContract(implementation, contract string) *AppError {
	return &AppError{
		Code:       ErrCodeDuplicateContract,
		Message:    fmt.Sprintf("%s exports %s more than once", implementation, contract),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"implementation": implementation, "contract": contract},
	}
}

// InvalidDeclaration reports contradicting or malformed markers.
func InvalidDeclaration(implementation, reason string) *AppError {
	return &AppError{
		Code:       ErrCodeInvalidDeclaration,
		Message:    fmt.Sprintf("invalid export declaration on %s: %s", implementation, reason),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"implementation": implementation},
	}
}

// --- Bind-time constructors ---

// ContractTypeMismatch reports an implementation not assignable to its contract.
func ContractTypeMismatch(implementation, contract string) *AppError {
	return &AppError{
		Code:       ErrCodeContractTypeMismatch,
		Message:    fmt.Sprintf("%s is not assignable to contract type %s", implementation, contract),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"implementation": implementation, "contract": contract},
	}
}

// InvalidConstructor reports a constructor the catalog cannot call.
func InvalidConstructor(constructor, reason string) *AppError {
	return &AppError{
		Code:       ErrCodeInvalidConstructor,
		Message:    fmt.Sprintf("invalid constructor %s: %s", constructor, reason),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"constructor": constructor},
	}
}

// ContainerSealed reports a registration attempted after commit.
func ContainerSealed(backend, key string) *AppError {
	return &AppError{
		Code:       ErrCodeContainerSealed,
		Message:    fmt.Sprintf("%s container is sealed, cannot register %s", backend, key),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"backend": backend, "key": key},
	}
}

// --- Resolution constructors ---

// ExportNotFound reports a singular query with zero matches.
func ExportNotFound(contract string) *AppError {
	return &AppError{
		Code:       ErrCodeExportNotFound,
		Message:    fmt.Sprintf("no export matches %s", contract),
		HTTPStatus: http.StatusNotFound,
		Retryable:  true,
		Details:    map[string]any{"contract": contract},
	}
}

// AmbiguousExport reports a singular query with more than one match.
func AmbiguousExport(contract string, count int) *AppError {
	return &AppError{
		Code:       ErrCodeAmbiguousExport,
		Message:    fmt.Sprintf("%d exports match %s, expected exactly one", count, contract),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"contract": contract, "count": count},
	}
}

// MetadataKeyNotFound reports a missing metadata key.
func MetadataKeyNotFound(key string) *AppError {
	return &AppError{
		Code:       ErrCodeMetadataKeyNotFound,
		Message:    fmt.Sprintf("metadata key %q not found", key),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"key": key},
	}
}

// CircularDependency reports a resolution path that returns to itself.
func CircularDependency(path []string) *AppError {
	return &AppError{
		Code:       ErrCodeCircularDependency,
		Message:    fmt.Sprintf("circular dependency: %v", path),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"path": path},
	}
}

// BoundaryNotSupported reports a backend without sharing-boundary scopes.
func BoundaryNotSupported(backend string) *AppError {
	return &AppError{
		Code:       ErrCodeBoundaryNotSupported,
		Message:    fmt.Sprintf("%s does not support sharing boundaries", backend),
		HTTPStatus: http.StatusNotImplemented,
		Details:    map[string]any{"backend": backend},
	}
}

// --- Generic constructors ---

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false, Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// Internal creates a new AppError for an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}
