package reader

import (
	"reflect"

	"github.com/kbukum/exportkit/logger"
)

// Option configures a Reader.
type Option func(*Reader)

// WithFailFast controls the error policy. With fail-fast (the default) Read
// stops at the first broken type; without it broken types are skipped and
// their errors are joined.
func WithFailFast(failFast bool) Option {
	return func(r *Reader) { r.failFast = failFast }
}

// WithTypes makes types resolvable from reflect.Type marker properties by
// their qualified name ("pkg/path.Name") or their reflect string ("pkg.Name").
func WithTypes(types ...reflect.Type) Option {
	return func(r *Reader) { r.conv.register(types...) }
}

// WithLogger sets the logger used for scan diagnostics.
func WithLogger(l *logger.Logger) Option {
	return func(r *Reader) { r.log = l }
}
