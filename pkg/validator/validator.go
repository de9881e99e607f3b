package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator provides validation functionality
type Validator interface {
	Validate(interface{}) error
}

// FieldError describes the first failing rule of a single field.
type FieldError struct {
	Field string
	Tag   string
	Param string
}

// Error holds every failing field of a validated struct.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message())
	}
	return strings.Join(msgs, "; ")
}

// Has reports whether field failed with the given tag.
func (e *Error) Has(field, tag string) bool {
	for _, f := range e.Fields {
		if f.Field == field && f.Tag == tag {
			return true
		}
	}
	return false
}

func (f FieldError) Message() string {
	switch f.Tag {
	case "required":
		return fmt.Sprintf("%s is required", f.Field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", f.Field, f.Param)
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", f.Field, f.Param)
	case "email":
		return fmt.Sprintf("%s must be a valid email", f.Field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", f.Field, f.Param)
	default:
		return fmt.Sprintf("%s is invalid", f.Field)
	}
}

type validate struct {
	engine *validator.Validate
}

func New() Validator {
	engine := validator.New(validator.WithRequiredStructEnabled())
	engine.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &validate{engine: engine}
}

func (v *validate) Validate(obj interface{}) error {
	err := v.engine.Struct(obj)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &Error{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field: fe.Field(),
			Tag:   fe.Tag(),
			Param: fe.Param(),
		})
	}
	return out
}
