package bootstrap

import (
	"time"

	"github.com/kbukum/exportkit/logger"
	"github.com/kbukum/exportkit/observability"
	"github.com/kbukum/exportkit/reader"
)

// Option configures the App during creation.
// Options are non-generic so they can be used with any config type.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	gracefulTimeout *time.Duration
	backend         Backend
	metrics         *observability.Metrics
	readerOpts      []reader.Option
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger for the application.
// If not set, the logger is initialized from the config's Logging field.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithGracefulTimeout sets the maximum duration for graceful shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}

// WithBackend binds into b instead of the backend named by
// composition.backend.
func WithBackend(b Backend) Option {
	return func(o *appOptions) {
		o.backend = b
	}
}

// WithMetrics instruments Exports with m even when OTLP metrics export is
// disabled.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *appOptions) {
		o.metrics = m
	}
}

// WithReaderOptions adds metadata reader options, e.g. reader.WithTypes.
func WithReaderOptions(opts ...reader.Option) Option {
	return func(o *appOptions) {
		o.readerOpts = append(o.readerOpts, opts...)
	}
}
