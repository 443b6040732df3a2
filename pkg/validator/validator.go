package validator

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	initOnce sync.Once
	instance *validator.Validate
)

// ValidationError describes one field that failed a rule. Field carries the
// json name of the offending field so clients can match it to their payload.
type ValidationError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param"`
}

// ValidationErrors aggregates every failed rule for a request.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}

	parts := make([]string, len(v))
	for i, failure := range v {
		rule := failure.Tag
		if failure.Param != "" {
			rule += "=" + failure.Param
		}
		parts[i] = failure.Field + " failed on " + rule
	}
	return strings.Join(parts, "; ")
}

// ValidateStruct runs the shared validator over s and converts failures into
// ValidationErrors keyed by json field name.
func ValidateStruct(s interface{}) error {
	err := sharedValidator().Struct(s)
	if err == nil {
		return nil
	}

	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	failures := make(ValidationErrors, 0, len(ve))
	for _, fe := range ve {
		failures = append(failures, ValidationError{
			Field: fe.Field(),
			Tag:   fe.Tag(),
			Param: fe.Param(),
		})
	}
	return failures
}

// RegisterValidation installs a custom rule under the given tag.
func RegisterValidation(tag string, fn validator.Func) error {
	return sharedValidator().RegisterValidation(tag, fn)
}

func sharedValidator() *validator.Validate {
	initOnce.Do(func() {
		instance = validator.New()
		instance.RegisterTagNameFunc(jsonTagName)
	})
	return instance
}

// jsonTagName reports the name a client used in its JSON payload, falling
// back to the Go field name when no usable json tag exists.
func jsonTagName(fld reflect.StructField) string {
	tag := fld.Tag.Get("json")
	if comma := strings.Index(tag, ","); comma != -1 {
		tag = tag[:comma]
	}
	if tag == "" || tag == "-" {
		return fld.Name
	}
	return tag
}
