// Package vesselbackend binds exports into a github.com/xraph/vessel
// container.
//
// Shared registrations are vessel singletons, non-shared ones transients and
// boundary-shared ones scoped services living in the vessel scope opened by
// BeginBoundary. Forwarding registrations are transient vessel services that
// resolve their master by key, so every contract of a shared implementation
// observes the master's instance.
//
//	c, err := binder.BindExports(records, cat, vesselbackend.New())
package vesselbackend
