// Package validation plugs go-playground/validator into Echo and turns its
// errors into a field to message map.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Errors maps a JSON field name to a human readable message.
type Errors map[string]string

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for f, m := range e {
		parts = append(parts, f+": "+m)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator implements echo.Validator.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator that reports fields by their json tag.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return &Validator{v: v}
}

// Validate returns Errors when i fails its `validate` tags.
func (cv *Validator) Validate(i any) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	out := make(Errors, len(ves))
	for _, fe := range ves {
		field := fieldPath(fe)
		if _, seen := out[field]; !seen {
			out[field] = message(fe)
		}
	}
	return out
}

// fieldPath drops the top-level struct name: "req.faqs[0].question" becomes
// "faqs[0].question".
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
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "alphanum":
		return "may contain only letters and digits"
	case "url":
		return "must be a valid URL"
	case "eqfield":
		return "must match " + strings.ToLower(fe.Param())
	}
	return "is invalid"
}
