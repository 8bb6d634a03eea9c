// Package validation validates configuration and request input.
//
// Struct validation uses go-playground/validator tags; messages name fields
// by their mapstructure key:
//
//	type DiagnosticsConfig struct {
//	    Addr string `mapstructure:"addr" validate:"required,hostname_port"`
//	}
//	err := validation.Validate(cfg)
//
// The fluent Validator covers checks tags cannot express:
//
//	err := validation.New().
//	    Required("contract", contract).
//	    Identifiers("boundary", names).
//	    Validate()
//
// Both return an *errors.AppError with code INVALID_INPUT whose details
// list the failing fields.
package validation
