// Package arena is the built-in backend: a registration arena with one
// storage slot per shared registration and an alias table pointing
// forwarding keys at their canonical key.
//
//	c, err := binder.BindExports(records, cat, arena.New())
//	log, err := facade.GetExportedValue[Logger](c)
//
// Registrations are accepted after Commit; every change is published to
// OnExportsChanged subscribers. Registrations with a sharing boundary are only
// visible inside scopes opened with BeginBoundary for that boundary, and each
// scope owns its own instances of them.
package arena
