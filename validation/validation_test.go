package validation

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/kbukum/exportkit/errors"
)

type listener struct {
	Addr    string  `mapstructure:"addr" validate:"required,hostname_port"`
	Backend string  `mapstructure:"backend" validate:"oneof=arena dig vessel"`
	Rate    float64 `mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	Scope   string  `mapstructure:"scope" validate:"omitempty,identifier"`
}

func TestValidate_Valid(t *testing.T) {
	err := Validate(listener{Addr: "localhost:8081", Backend: "dig", Rate: 0.5, Scope: "request"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Invalid(t *testing.T) {
	err := Validate(listener{Backend: "unity", Rate: 2, Scope: "no spaces"})
	if !stderrors.Is(err, errors.ErrInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
	msg := err.Error()
	for _, want := range []string{"addr: is required", "backend: must be one of: arena dig vessel", "sample_rate: must be at most 1", "scope: must be an identifier"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}

	appErr, _ := errors.AsAppError(err)
	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok || len(fields) != 4 {
		t.Errorf("expected 4 field errors, got %v", appErr.Details["fields"])
	}
}

func TestValidator_Chaining(t *testing.T) {
	err := New().
		Required("contract", " ").
		Identifier("name", "ok_name").
		Identifiers("boundary", []string{"request", "bad name"}).
		OneOf("backend", "unity", []string{"arena", "dig"}).
		Custom(false, "addr", "must not be empty when enabled").
		Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	fields := err.Details["fields"].([]FieldError)
	want := []string{"contract", "boundary[1]", "backend", "addr"}
	if len(fields) != len(want) {
		t.Fatalf("expected %d errors, got %v", len(want), fields)
	}
	for i, f := range fields {
		if f.Field != want[i] {
			t.Errorf("field %d: expected %q, got %q", i, want[i], f.Field)
		}
	}
}

func TestValidator_NoErrors(t *testing.T) {
	v := New().Required("contract", "pkg.Logger").OneOf("backend", "", []string{"arena"})
	if v.HasErrors() || v.Validate() != nil {
		t.Errorf("unexpected errors %v", v.Errors())
	}
	if err := Required("contract", "x"); err != nil {
		t.Errorf("unexpected error %v", err)
	}
	if err := Required("contract", ""); err == nil {
		t.Error("expected error")
	}
}

func TestIsIdentifier(t *testing.T) {
	cases := map[string]bool{"request": true, "tenant.a-1": true, "_x": true, "": false, "1st": false, "a b": false}
	for in, want := range cases {
		if got := IsIdentifier(in); got != want {
			t.Errorf("IsIdentifier(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestToSnakeCase(t *testing.T) {
	if got := toSnakeCase("SampleRate"); got != "sample_rate" {
		t.Errorf("got %q", got)
	}
}
