// Package metadata is the backend-neutral model produced by the reader and
// consumed by the binder.
//
// An ExportRecord describes one implementation type: the contracts it is
// exported under (one metadata View per contract), whether all of those
// contracts share one instance and the optional sharing boundary. Two keys of
// every contract map are reserved:
//
//	ContractType  reflect.Type, absent or equal to the implementation type
//	              means the type's own identity
//	ContractName  string, absent and "" are equivalent
//
// All matching rules used by the backends live here (ContractOf,
// ContractNameMatches) so every backend filters exports identically.
package metadata
