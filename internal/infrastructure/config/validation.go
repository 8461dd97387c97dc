package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/andrescamacho/marssim-go/internal/domain/marstime"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
)

// Validator checks config and catalog structs against their validate tags.
// Failures name the offending key as written in the file (simulation.sols,
// buildings[2].functions[0].type), not the Go field.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator that knows the simulation's custom rules:
//
//	millisols  a pulse length in (0, 1000]
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(fileKey)
	// Only fails on a nil func or a bad tag name
	_ = v.RegisterValidation("millisols", func(fl validator.FieldLevel) bool {
		m := fl.Field().Float()
		return m > 0 && m <= marstime.MillisolsPerSol
	})

	return &Validator{validate: v}
}

// fileKey names a field by its mapstructure or yaml key
func fileKey(f reflect.StructField) string {
	for _, tag := range []string{"mapstructure", "yaml"} {
		if name, _, _ := strings.Cut(f.Tag.Get(tag), ","); name != "" {
			return name
		}
	}
	return ""
}

// Validate validates a struct using validation tags. Every failing field
// becomes a *shared.ValidationError; several are joined.
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	errs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, shared.NewValidationError(keyPath(fe), describe(fe)))
	}
	return errors.Join(errs...)
}

// keyPath drops the root struct name from the namespace
func keyPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_if":
		return fmt.Sprintf("is required when %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fmt.Sprint(fe.Value()))
	case "millisols":
		return fmt.Sprintf("must be in (0, %d] millisols, got %v", marstime.MillisolsPerSol, fe.Value())
	case "min", "gte":
		return fmt.Sprintf("must be at least %s, got %v", fe.Param(), fe.Value())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s, got %v", fe.Param(), fe.Value())
	case "gt":
		return fmt.Sprintf("must be greater than %s, got %v", fe.Param(), fe.Value())
	case "lt":
		return fmt.Sprintf("must be less than %s, got %v", fe.Param(), fe.Value())
	case "ltefield":
		return fmt.Sprintf("must not exceed %s", fe.Param())
	case "startswith":
		return fmt.Sprintf("must start with %q", fe.Param())
	}
	return fmt.Sprintf("failed %s validation (value: %v)", fe.Tag(), fe.Value())
}

// ValidateConfig validates the entire configuration
func ValidateConfig(cfg *Config) error {
	return NewValidator().Validate(cfg)
}
