// Package digbackend binds exports into a go.uber.org/dig container.
//
// Every registration is provided under a generated dig name. Shared
// registrations rely on dig's value cache for identity; non-shared ones are
// provided as a factory function that creates a value per call. Forwarding
// registrations are dig constructors taking the master value as a named
// parameter, so one instance is observed whichever contract is requested.
//
//	c, err := binder.BindExports(records, cat, digbackend.New())
//
// The container is sealed by Commit. Registrations with a sharing boundary
// are provided to a dig child scope each time BeginBoundary opens that
// boundary.
package digbackend
