package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Scan-time errors
const (
	// ErrCodeMetadataConversion indicates a marker descriptor could not be converted to a runtime value.
	ErrCodeMetadataConversion ErrorCode = "METADATA_CONVERSION"
	// ErrCodeDuplicateContract indicates a type exports the same contract pair twice.
	ErrCodeDuplicateContract ErrorCode = "DUPLICATE_CONTRACT"
	// ErrCodeInvalidDeclaration indicates contradicting or malformed markers on a type.
	ErrCodeInvalidDeclaration ErrorCode = "INVALID_DECLARATION"
)

// Bind-time errors
const (
	// ErrCodeContractTypeMismatch indicates the implementation is not assignable to a declared contract.
	ErrCodeContractTypeMismatch ErrorCode = "CONTRACT_TYPE_MISMATCH"
	// ErrCodeInvalidConstructor indicates a constructor with an unsupported signature.
	ErrCodeInvalidConstructor ErrorCode = "INVALID_CONSTRUCTOR"
	// ErrCodeContainerSealed indicates a registration after the container was committed.
	ErrCodeContainerSealed ErrorCode = "CONTAINER_SEALED"
)

// Resolution errors
const (
	// ErrCodeExportNotFound indicates no registration matched a singular query.
	ErrCodeExportNotFound ErrorCode = "EXPORT_NOT_FOUND"
	// ErrCodeAmbiguousExport indicates more than one registration matched a singular query.
	ErrCodeAmbiguousExport ErrorCode = "AMBIGUOUS_EXPORT"
	// ErrCodeMetadataKeyNotFound indicates a metadata view has no such key.
	ErrCodeMetadataKeyNotFound ErrorCode = "METADATA_KEY_NOT_FOUND"
	// ErrCodeCircularDependency indicates a constructor depends on itself.
	ErrCodeCircularDependency ErrorCode = "CIRCULAR_DEPENDENCY"
	// ErrCodeBoundaryNotSupported indicates the backend cannot open sharing boundaries.
	ErrCodeBoundaryNotSupported ErrorCode = "BOUNDARY_NOT_SUPPORTED"
)

// Generic errors
const (
	// ErrCodeInvalidInput indicates invalid configuration or arguments.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeInternal indicates an unexpected failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Only resolution failures that may succeed once the registration set changes
// are worth retrying.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeExportNotFound: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
