// Package diagnostics serves a read-only HTTP view of a composed provider.
//
// Routes:
//
//	GET /exports                 every registration (?hidden=true adds synthetic masters)
//	GET /exports/:contract       registrations of one contract type (?name= filters by contract name)
//	GET /health                  component health
//	GET /info                    build info and linked container backends
//
// The contract parameter is either the short type string ("pkg.Logger") or
// the path-escaped qualified name ("example.com%2Fpkg.Logger"). No handler
// instantiates an export: metadata comes from the backend's registration
// index.
package diagnostics
