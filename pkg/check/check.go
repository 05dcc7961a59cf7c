// Package check validates records against their `validate` struct tags and
// reports the first offending field as an *Error.
package check

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid matches every *Error with errors.Is.
var ErrInvalid = errors.New("invalid value")

// Error names a field whose value is not allowed.
type Error struct {
	Field   string
	Value   string
	Allowed []string
}

func (e *Error) Error() string {
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
	}
	return fmt.Sprintf("invalid %s %q, expected one of %s", e.Field, e.Value, strings.Join(e.Allowed, ", "))
}

func (e *Error) Unwrap() error {
	return ErrInvalid
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names, which is what users type and see
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Struct validates v. When fields are given only those Go field names are
// checked.
func Struct(v any, fields ...string) error {
	var err error
	if len(fields) == 0 {
		err = validate.Struct(v)
	} else {
		err = validate.StructPartial(v, fields...)
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return err
	}
	fe := errs[0]
	e := &Error{Field: fe.Field(), Value: fmt.Sprint(fe.Value())}
	if fe.Tag() == "oneof" {
		e.Allowed = strings.Fields(fe.Param())
	}
	return e
}
