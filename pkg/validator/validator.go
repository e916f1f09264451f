// Package validator wraps go-playground/validator with the tag naming and
// messages used by the HTTP handlers. Field names come from the json tag,
// falling back to the form tag and then the Go field name.
package validator

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param"`
}

// Message renders the failure for API clients, e.g. "weight unit must be one of: kg, lb".
func (e ValidationError) Message() string {
	field := strings.ToLower(strings.ReplaceAll(e.Field, "_", " "))
	if field == "" {
		field = "field"
	}

	if format, ok := messageFormats[e.Tag]; ok {
		param := e.Param
		if e.Tag == "oneof" {
			param = strings.Join(strings.Fields(param), ", ")
		}
		return fmt.Sprintf(format, field, param)
	}
	if e.Param != "" {
		return fmt.Sprintf("%s failed validation: %s=%s", field, e.Tag, e.Param)
	}
	return fmt.Sprintf("%s failed validation: %s", field, e.Tag)
}

var messageFormats = map[string]string{
	"required": "%s is required%.0s",
	"min":      "%s must be at least %s characters",
	"max":      "%s must be at most %s characters",
	"gt":       "%s must be greater than %s",
	"gte":      "%s must be at least %s",
	"lte":      "%s must be at most %s",
	"oneof":    "%s must be one of: %s",
	"finite":   "%s must be a finite number%.0s",
}

// ValidationErrors collects multiple validation failures.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}

	parts := make([]string, len(v))
	for i, err := range v {
		parts[i] = err.Field + " failed on " + err.Tag
		if err.Param != "" {
			parts[i] += "=" + err.Param
		}
	}
	return strings.Join(parts, "; ")
}

// Messages joins the human readable form of every failure.
func (v ValidationErrors) Messages() string {
	if len(v) == 0 {
		return "invalid request payload"
	}
	messages := make([]string, len(v))
	for i, err := range v {
		messages[i] = err.Message()
	}
	return strings.Join(messages, "; ")
}

// Fields maps each failing field to its message. The first failure per field
// wins.
func (v ValidationErrors) Fields() map[string]string {
	out := make(map[string]string, len(v))
	for _, err := range v {
		if _, seen := out[err.Field]; !seen {
			out[err.Field] = err.Message()
		}
	}
	return out
}

// ValidateStruct validates a struct using registered rules. Rule failures are
// returned as ValidationErrors; anything else (e.g. a non-struct) as is.
func ValidateStruct(s any) error {
	err := engine().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	failures := make(ValidationErrors, len(fieldErrs))
	for i, fe := range fieldErrs {
		failures[i] = ValidationError{Field: fe.Field(), Tag: fe.Tag(), Param: fe.Param()}
	}
	return failures
}

// RegisterValidation adds a custom rule to the shared validator.
func RegisterValidation(tag string, fn validator.Func) error {
	return engine().RegisterValidation(tag, fn)
}

// finite rejects NaN and infinities on float fields.
func finite(fl validator.FieldLevel) bool {
	field := fl.Field()
	if kind := field.Kind(); kind != reflect.Float32 && kind != reflect.Float64 {
		return true
	}
	f := field.Float()
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func fieldName(fld reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name, _, _ := strings.Cut(fld.Tag.Get(key), ",")
		if name == "-" {
			break
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

var engine = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	_ = v.RegisterValidation("finite", finite)
	return v
})
