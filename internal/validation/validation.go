// Package validation wraps go-playground/validator with form friendly messages.
//
// Field errors are keyed by the field's form name (the `form` tag, falling back
// to `json`). Messages are built from the `label` tag, and a `msg` tag may
// override the message for individual rules:
//
//	Confirm string `form:"confirmPassword" validate:"required,eqfield=Password" msg:"required=Please confirm your password;eqfield=Passwords must match"`
package validation

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// FieldErrors maps a form field name to the message to show next to it
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Validator validates tagged structs
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	return &Validator{validate: v}
}

// Struct validates s and returns FieldErrors when any rule fails
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(err, "[validation.Struct]")
	}

	meta := fieldMeta(reflect.TypeOf(s))
	out := FieldErrors{}
	for _, fe := range verrs {
		if _, exists := out[fe.Field()]; exists {
			continue
		}
		out[fe.Field()] = message(fe, meta[fe.Field()])
	}
	return out
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"form", "json"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

type meta struct {
	label     string
	overrides map[string]string
}

// fieldMeta collects label and msg tags, following embedded structs
func fieldMeta(t reflect.Type) map[string]meta {
	out := map[string]meta{}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return out
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous {
			for k, v := range fieldMeta(f.Type) {
				out[k] = v
			}
			continue
		}

		m := meta{label: f.Tag.Get("label"), overrides: map[string]string{}}
		if m.label == "" {
			m.label = f.Name
		}
		for _, part := range strings.Split(f.Tag.Get("msg"), ";") {
			if rule, text, ok := strings.Cut(part, "="); ok {
				m.overrides[strings.TrimSpace(rule)] = strings.TrimSpace(text)
			}
		}
		out[fieldName(f)] = m
	}
	return out
}

func message(fe validator.FieldError, m meta) string {
	if text, ok := m.overrides[fe.Tag()]; ok {
		return text
	}

	label := m.label
	if label == "" {
		label = fe.Field()
	}

	numeric := false
	switch fe.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		numeric = true
	}

	switch fe.Tag() {
	case "required", "required_if", "required_with":
		return label + " is required"
	case "email":
		return "Invalid email"
	case "url", "http_url":
		return "Must be a valid URL"
	case "min", "gte":
		if numeric {
			return fmt.Sprintf("%s must be at least %s", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "max", "lte":
		if numeric {
			return fmt.Sprintf("%s must be less than or equal to %s", label, fe.Param())
		}
		return fmt.Sprintf("%s must be less than %s characters", label, fe.Param())
	case "oneof":
		return "Please select a " + strings.ToLower(label)
	case "eqfield":
		return label + " must match"
	}
	return label + " is invalid"
}
