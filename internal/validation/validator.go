package validation

import (
	"fmt"
	"net/http"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps JSON field names to a list of validation error messages.
type FieldErrors map[string][]string

// ValidationError satisfies httpx.DomainProblem structurally so handlers can
// return it directly.
type ValidationError struct {
	summary string
	fields  FieldErrors
}

func (e *ValidationError) Error() string { return e.summary }

// Fields returns the per-field messages.
func (e *ValidationError) Fields() FieldErrors { return e.fields }

func (e *ValidationError) ProblemCode() string   { return "ErrValidation" }
func (e *ValidationError) ProblemStatus() int    { return http.StatusBadRequest }
func (e *ValidationError) ProblemTitle() string  { return "Validation error" }
func (e *ValidationError) ProblemDetail() string { return e.summary }
func (e *ValidationError) ProblemContext() any   { return map[string]any{"fields": e.fields} }

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.Split(fld.Tag.Get(tag), ",")[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return lowerFirst(fld.Name)
		})
	})
	return validate
}

// ValidateStruct validates v according to its `validate` tags. On failure it
// returns a *ValidationError whose summary reads like
// "password must be at least 6 characters, and 1 other error".
func ValidateStruct(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return &ValidationError{summary: "validation failed", fields: FieldErrors{}}
	}

	fields := make(FieldErrors)
	for _, fe := range verrs {
		field := fieldPath(fe)
		fields[field] = append(fields[field], messageForTag(fe))
	}
	return &ValidationError{summary: summarize(fields), fields: fields}
}

// fieldPath drops the root struct name so nested fields read "doctor.email".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "lowercase":
		return "must be lowercase"
	case "uuid", "uuid4", "uuid7":
		return "must be a valid id"
	case "len":
		return fmt.Sprintf("must contain exactly %s items", fe.Param())
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
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	default:
		return "is invalid"
	}
}

func summarize(fields FieldErrors) string {
	if len(fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(fields))
	total := 0
	for name, msgs := range fields {
		names = append(names, name)
		total += len(msgs)
	}
	sort.Strings(names)

	first := names[0]
	if msgs, ok := fields["email"]; ok {
		first = "email"
		if msgs[0] == "must be a valid email" {
			return withOthers("invalid email", total-1)
		}
	}
	return withOthers(fmt.Sprintf("%s %s", first, fields[first][0]), total-1)
}

func withOthers(msg string, others int) string {
	switch {
	case others <= 0:
		return msg
	case others == 1:
		return msg + ", and 1 other error"
	default:
		return fmt.Sprintf("%s, and %d other errors", msg, others)
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
