package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5/middleware"
)

// InternalMessage is the only detail clients ever see for unexpected failures.
const InternalMessage = "Something went wrong!"

// Problem is the error body every endpoint returns:
//
//	{"error": true, "message": "...", "code": "...", "status": 400, "requestId": "..."}
//
// Existing clients read `error` and `message`; the rest are extensions.
type Problem struct {
	Failed    bool   `json:"error"`
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	Status    int    `json:"status,omitempty"`
	RequestID string `json:"requestId,omitempty"`
	Context   any    `json:"context,omitempty"`

	// Huma-generated request validation details.
	Errors []*huma.ErrorDetail `json:"errors,omitempty"`
}

func (p *Problem) Error() string {
	if p.Message != "" {
		return p.Message
	}
	return http.StatusText(p.GetStatus())
}

// GetStatus implements huma.StatusError.
func (p *Problem) GetStatus() int {
	if p.Status == 0 {
		return http.StatusInternalServerError
	}
	return p.Status
}

// ContentType implements huma.ContentTypeFilter.
func (p *Problem) ContentType(ct string) string {
	if ct == "application/json" {
		return "application/problem+json"
	}
	return ct
}

// DomainProblem is what a module error exposes so it can be rendered
// without this package knowing the concrete type.
type DomainProblem interface {
	ProblemCode() string
	ProblemStatus() int
	ProblemTitle() string
	ProblemDetail() string
	ProblemContext() any
}

// ToProblem converts any error into a Problem.
//   - huma.StatusError values (including *Problem) pass through unchanged.
//   - DomainProblem values are rendered with their status and message.
//   - Anything else becomes a generic 500.
func ToProblem(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	var se huma.StatusError
	if errors.As(err, &se) {
		if _, isDomain := se.(DomainProblem); !isDomain {
			return se
		}
	}

	var dp DomainProblem
	if errors.As(err, &dp) {
		status := dp.ProblemStatus()
		return &Problem{
			Failed:    true,
			Message:   defaultMessage(dp.ProblemDetail(), dp.ProblemTitle(), status),
			Code:      dp.ProblemCode(),
			Status:    status,
			RequestID: middleware.GetReqID(ctx),
			Context:   dp.ProblemContext(),
		}
	}

	return InternalProblem(ctx)
}

// InternalProblem builds the generic 500 response.
func InternalProblem(ctx context.Context) *Problem {
	return &Problem{
		Failed:    true,
		Message:   InternalMessage,
		Code:      "ErrInternal",
		Status:    http.StatusInternalServerError,
		RequestID: middleware.GetReqID(ctx),
	}
}

// InstallErrorModel makes framework-generated errors (bad JSON, unknown
// routes inside huma, WriteErr from middleware) use the Problem shape.
func InstallErrorModel() {
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		p := &Problem{
			Failed:  true,
			Message: defaultMessage(msg, "", status),
			Code:    codeForStatus(status),
			Status:  status,
		}
		for _, err := range errs {
			if err == nil {
				continue
			}
			var detail *huma.ErrorDetail
			if errors.As(err, &detail) {
				p.Errors = append(p.Errors, detail)
				continue
			}
			p.Errors = append(p.Errors, &huma.ErrorDetail{Message: err.Error()})
		}
		return p
	}
}

func defaultMessage(detail, title string, status int) string {
	if detail != "" {
		return detail
	}
	if title != "" {
		return title
	}
	if status >= http.StatusInternalServerError {
		return InternalMessage
	}
	return http.StatusText(status)
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return "ErrValidation"
	case http.StatusUnauthorized:
		return "ErrUnauthorized"
	case http.StatusForbidden:
		return "ErrForbidden"
	case http.StatusNotFound:
		return "ErrNotFound"
	default:
		if status >= http.StatusInternalServerError {
			return "ErrInternal"
		}
		return ""
	}
}
