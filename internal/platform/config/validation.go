package config

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the package-level validator instance.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("header", validHeaderName)
	v.RegisterStructValidation(validatePropagation, PropagationConfig{})

	return v
}

// Validate validates the configuration and returns an error if invalid.
// Validation fails fast - the service should not start with invalid config.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	return nil
}

// validHeaderName accepts an HTTP header field name: a non-empty token of
// visible ASCII characters other than separators.
func validHeaderName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if name == "" {
		return false
	}

	for i := range len(name) {
		if !isTokenChar(name[i]) {
			return false
		}
	}

	return true
}

func isTokenChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	default:
		return strings.IndexByte("!#$%&'*+-.^_`|~", c) >= 0
	}
}

// validatePropagation rejects header names that collide once canonicalized,
// since one header would then carry two context values.
func validatePropagation(sl validator.StructLevel) {
	p, ok := sl.Current().Interface().(PropagationConfig)
	if !ok {
		return
	}

	seen := make(map[string]string, 3)

	for _, h := range []struct{ field, name string }{
		{"TraceHeader", p.TraceHeader},
		{"CorrelationHeader", p.CorrelationHeader},
		{"DeadlineHeader", p.DeadlineHeader},
	} {
		if h.name == "" {
			continue
		}

		key := http.CanonicalHeaderKey(h.name)
		if other, dup := seen[key]; dup {
			sl.ReportError(h.name, h.field, h.field, "distinct", other)
			continue
		}

		seen[key] = h.field
	}
}

// formatValidationErrors converts validator errors to a readable format.
func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	errs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		errs = append(errs, formatFieldError(e))
	}

	return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
}

// formatFieldError formats a single field validation error.
func formatFieldError(e validator.FieldError) string {
	field := formatFieldPath(e.Namespace())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_if":
		return fmt.Sprintf("%s is required when %s", field, e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "startswith":
		return fmt.Sprintf("%s must start with %q", field, e.Param())
	case "header":
		return fmt.Sprintf("%s must be a valid HTTP header name", field)
	case "distinct":
		return fmt.Sprintf("%s must differ from %s", field, strings.ToLower(e.Param()))
	case "gtefield":
		return fmt.Sprintf("%s must not be less than %s", field, strings.ToLower(e.Param()))
	default:
		return fmt.Sprintf("%s failed validation: %s", field, e.Tag())
	}
}

// formatFieldPath converts "Config.Server.Port" to "server.port".
func formatFieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}

	for i, part := range parts {
		parts[i] = strings.ToLower(part)
	}

	return strings.Join(parts, ".")
}
