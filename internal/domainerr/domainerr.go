// Package domainerr holds the structured error type every module builds its
// error catalogue from.
package domainerr

import (
	"fmt"
	"net/http"
)

// Error is a structured, self-describing domain error. It carries enough
// HTTP metadata for httpx.ToProblem to turn it into a response without
// enumerating error types.
type Error struct {
	// Code is a stable, machine-readable business code (e.g. "ErrInvalidOTP").
	Code string

	// HTTPStatus is the status suggested for this error.
	HTTPStatus int

	// Title is a short human summary; empty means StatusText(HTTPStatus).
	Title string

	// Message is the client-facing message, matching what existing clients display.
	Message string

	// Detail overrides Message when set.
	Detail string

	// Context is an optional extension payload (e.g. validation fields map).
	Context any

	cause error
}

// New builds a sentinel error.
func New(code string, status int, message string) *Error {
	return &Error{
		Code:       code,
		HTTPStatus: status,
		Title:      http.StatusText(status),
		Message:    message,
	}
}

func (e *Error) Error() string {
	msg := e.ProblemDetail()
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is compares by Code so copies made through WithCause still match their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy wrapping err.
func (e *Error) WithCause(err error) *Error {
	if err == nil {
		return e
	}
	cp := *e
	cp.cause = err
	return &cp
}

// WithDetail returns a copy with a client-facing detail message.
func (e *Error) WithDetail(detail string) *Error {
	cp := *e
	cp.Detail = detail
	return &cp
}

// WithContext returns a copy carrying an extension payload.
func (e *Error) WithContext(ctx any) *Error {
	cp := *e
	cp.Context = ctx
	return &cp
}

func (e *Error) ProblemCode() string { return e.Code }

func (e *Error) ProblemStatus() int {
	if e.HTTPStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.HTTPStatus
}

func (e *Error) ProblemTitle() string { return e.Title }

func (e *Error) ProblemDetail() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Message
}

func (e *Error) ProblemContext() any { return e.Context }
