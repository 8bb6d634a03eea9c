package bootstrap

import (
	"github.com/kbukum/exportkit/config"
)

// Config is the constraint for application configuration types.
// Any struct embedding config.AppConfig satisfies it through promoted
// methods.
//
// Example:
//
//	type MyConfig struct {
//	    config.AppConfig `yaml:",inline" mapstructure:",squash"`
//	    Database DBConfig `yaml:"database" mapstructure:"database"`
//	}
//
//	app, err := bootstrap.NewApp(&cfg, cat)
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	GetCompositionConfig() *config.CompositionConfig
	ApplyDefaults()
	Validate() error
}
