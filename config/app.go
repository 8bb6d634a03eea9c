package config

// AppConfig is the configuration of an exportkit application. Embed it to
// add application sections:
//
//	type OrdersConfig struct {
//	    config.AppConfig `yaml:",inline" mapstructure:",squash"`
//	    Database DBConfig `yaml:"database" mapstructure:"database"`
//	}
type AppConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Composition   CompositionConfig `yaml:"composition" mapstructure:"composition"`
}

// GetCompositionConfig returns the composition section.
func (c *AppConfig) GetCompositionConfig() *CompositionConfig {
	return &c.Composition
}

// ApplyDefaults applies defaults to every section.
func (c *AppConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Composition.ApplyDefaults()
}

// Validate validates every section and returns the first failure.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	return c.Composition.Validate()
}
