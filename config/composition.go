package config

import (
	"github.com/kbukum/exportkit/validation"
)

// Backend names accepted by CompositionConfig.Backend.
const (
	BackendArena  = "arena"
	BackendDig    = "dig"
	BackendVessel = "vessel"
)

// CompositionConfig selects and tunes the composition pipeline.
type CompositionConfig struct {
	Backend       string              `yaml:"backend" mapstructure:"backend" validate:"oneof=arena dig vessel"`
	Reader        ReaderConfig        `yaml:"reader" mapstructure:"reader"`
	Diagnostics   DiagnosticsConfig   `yaml:"diagnostics" mapstructure:"diagnostics"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
}

// ReaderConfig controls the metadata reader.
type ReaderConfig struct {
	// FailFast stops the scan at the first broken type. Defaults to true.
	FailFast *bool `yaml:"fail_fast" mapstructure:"fail_fast"`
}

// DiagnosticsConfig controls the HTTP diagnostics endpoint.
type DiagnosticsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Addr    string `yaml:"addr" mapstructure:"addr" validate:"omitempty,hostname_port"`
}

// ObservabilityConfig controls OpenTelemetry export.
type ObservabilityConfig struct {
	Tracing    bool    `yaml:"tracing" mapstructure:"tracing"`
	Metrics    bool    `yaml:"metrics" mapstructure:"metrics"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,hostname_port"`
	Insecure   bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

// ApplyDefaults applies default values to the composition configuration.
func (c *CompositionConfig) ApplyDefaults() {
	if c.Backend == "" {
		c.Backend = BackendArena
	}
	if c.Reader.FailFast == nil {
		failFast := true
		c.Reader.FailFast = &failFast
	}
	if c.Diagnostics.Addr == "" {
		c.Diagnostics.Addr = ":8081"
	}
	if c.Observability.Endpoint == "" {
		c.Observability.Endpoint = "localhost:4318"
	}
	if c.Observability.SampleRate == 0 {
		c.Observability.SampleRate = 1.0
	}
}

// Validate validates the composition configuration.
func (c *CompositionConfig) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if appErr := validation.New().
		Custom(!c.Diagnostics.Enabled || c.Diagnostics.Addr != "",
			"diagnostics.addr", "is required when diagnostics are enabled").
		Custom(!(c.Observability.Tracing || c.Observability.Metrics) || c.Observability.Endpoint != "",
			"observability.endpoint", "is required when tracing or metrics are enabled").
		Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// ShouldFailFast reports the reader error policy.
func (c *CompositionConfig) ShouldFailFast() bool {
	return c.Reader.FailFast == nil || *c.Reader.FailFast
}
