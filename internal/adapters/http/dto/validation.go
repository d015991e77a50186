package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Validation errors.
var (
	// ErrValidation marks a request whose bound values broke a rule.
	ErrValidation = errors.New("validation failed")

	// ErrBinding marks a request whose query or path could not be decoded.
	ErrBinding = errors.New("binding failed")
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// fieldTags are consulted in order for the name reported in error details,
// so a query parameter is reported the way the caller spelled it.
var fieldTags = []string{"json", "form", "uri"}

// Validator returns the shared validator, built on first use.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(fieldName)

		_ = validate.RegisterValidation("uuid", validateUUID)
		_ = validate.RegisterValidation("notempty", validateNotEmpty)
	})

	return validate
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range fieldTags {
		name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")

		switch name {
		case "":
			continue
		case "-":
			return ""
		default:
			return name
		}
	}

	return fld.Name
}

// Validate checks the struct tags of v.
func Validate(v any) error {
	if err := Validator().Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return nil
}

// Validatable is implemented by requests with rules that tags cannot state,
// such as a cursor that must decode.
type Validatable interface {
	Validate() error
}

// ValidateAll checks struct tags and then, if v implements Validatable, its
// own rules.
func ValidateAll(v any) error {
	if err := Validate(v); err != nil {
		return err
	}

	if validatable, ok := v.(Validatable); ok {
		if err := validatable.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrValidation, err)
		}
	}

	return nil
}

// BindQueryAndValidate decodes the query string into v and validates it.
func BindQueryAndValidate(c *gin.Context, v any) error {
	return bindAndValidate(c.ShouldBindQuery, v)
}

// BindURIAndValidate decodes path parameters into v and validates it.
func BindURIAndValidate(c *gin.Context, v any) error {
	return bindAndValidate(c.ShouldBindUri, v)
}

func bindAndValidate(bind func(any) error, v any) error {
	if err := bind(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}

	return ValidateAll(v)
}

// IsValidationError reports whether err carries validator field errors.
func IsValidationError(err error) bool {
	var validationErrs validator.ValidationErrors
	return errors.As(err, &validationErrs)
}

// ValidationErrors maps each failing field to a readable message, for the
// details of an error response. It is empty when err has no field errors.
func ValidationErrors(err error) map[string]string {
	fieldErrors := make(map[string]string)

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fieldErrors
	}

	for _, fieldErr := range validationErrs {
		fieldErrors[fieldErr.Field()] = validationMessage(fieldErr)
	}

	return fieldErrors
}

// validationMessages holds message templates keyed by tag; {param} is
// replaced with the tag parameter.
var validationMessages = map[string]string{
	"required": "this field is required",
	"notempty": "must not be empty",
	"uuid":     "must be a valid UUID",
	"gte":      "must be greater than or equal to {param}",
	"lte":      "must be less than or equal to {param}",
	"gt":       "must be greater than {param}",
	"lt":       "must be less than {param}",
	"oneof":    "must be one of: {param}",
}

func validationMessage(fe validator.FieldError) string {
	tag, param := fe.Tag(), fe.Param()

	if tag == "min" || tag == "max" {
		return minMaxMessage(tag, param, fe.Kind())
	}

	if msg, ok := validationMessages[tag]; ok {
		return strings.ReplaceAll(msg, "{param}", param)
	}

	return "failed validation: " + tag
}

func minMaxMessage(tag, param string, kind reflect.Kind) string {
	unit := ""
	if kind == reflect.String {
		unit = " characters"
	}

	if tag == "min" {
		return "must be at least " + param + unit
	}

	return "must be at most " + param + unit
}

// validateUUID accepts an empty value; pair it with required when needed.
func validateUUID(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}

	_, err := uuid.Parse(value)

	return err == nil
}

func validateNotEmpty(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
