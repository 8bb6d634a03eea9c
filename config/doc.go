// Package config loads and validates exportkit application configuration.
//
// LoadConfig reads config.yml (searched in the usual cmd/<service> and
// config/ locations unless given explicitly), loads a .env file with
// godotenv, and overlays EXPORTKIT_-prefixed environment variables on
// every mapstructure key of the target struct:
//
//	type AppConfig struct {
//	    config.ServiceConfig `mapstructure:",squash"`
//	    Composition config.CompositionConfig `mapstructure:"composition"`
//	}
//
//	var cfg AppConfig
//	err := config.LoadConfig("orders", &cfg)
//
// EXPORTKIT_COMPOSITION_BACKEND=dig then selects the dig backend.
package config
