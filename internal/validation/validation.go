// Package validation checks incoming order payloads before they reach the
// workflow. Rejections surface as a per-field error map, distinct from the
// domain error taxonomy.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError describes one failed constraint.
type FieldError struct {
	Message    string                 `json:"message"`
	Name       string                 `json:"name"`
	Properties map[string]interface{} `json:"properties"`
}

// ValidationError is the structured rejection of a payload.
type ValidationError struct {
	Name   string                `json:"name"`
	Errors map[string]FieldError `json:"errors"`
}

func (e *ValidationError) Error() string { return "Validation failed" }

// Validator adapts go-playground/validator to echo's Validator interface.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()
	// Report fields under their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return wrap(verrs)
	}
	return err
}

func wrap(verrs validator.ValidationErrors) *ValidationError {
	out := &ValidationError{
		Name:   "ValidationError",
		Errors: make(map[string]FieldError, len(verrs)),
	}
	for _, fe := range verrs {
		out.Errors[fieldPath(fe)] = FieldError{
			Message: message(fe),
			Name:    fe.Tag(),
			Properties: map[string]interface{}{
				"path":  fieldPath(fe),
				"tag":   fe.Tag(),
				"param": fe.Param(),
			},
		}
	}
	return out
}

// fieldPath strips the root struct name from the namespace, leaving
// "products[0].productId" style keys.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("%s cannot be less than %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
