// Package facade is the backend-agnostic resolution API.
//
// Every backend adapter exposes its registrations as a Source; Facade then
// applies the cardinality rules of each query once, so all backends behave
// identically:
//
//	GetExportedValue           exactly one match, else EXPORT_NOT_FOUND or AMBIGUOUS_EXPORT
//	GetExportedValueOrDefault  zero or one match, nil on zero
//	TryGetExportedValue        never fails, false on zero, many or a failed construction
//	GetExportedValues          any cardinality, eager
//	GetExports                 any cardinality, lazy, metadata without instantiation
//
// Go has no generic methods, so the typed forms are package functions taking a
// Provider:
//
//	log, err := facade.GetExportedValue[Logger](p, "file")
//	views, err := facade.GetExportsWithMetadata[View, ViewMetadata](p)
package facade
