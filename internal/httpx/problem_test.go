package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delordemm1/psych-api/internal/domainerr"
)

func TestToProblem_DomainError(t *testing.T) {
	sentinel := domainerr.New("ErrInvalidOTP", http.StatusBadRequest, "Invalid OTP.")
	err := fmt.Errorf("verify: %w", sentinel.WithCause(errors.New("mismatch")))

	out := ToProblem(context.Background(), err)

	var p *Problem
	require.ErrorAs(t, out, &p)
	assert.True(t, p.Failed)
	assert.Equal(t, "Invalid OTP.", p.Message)
	assert.Equal(t, "ErrInvalidOTP", p.Code)
	assert.Equal(t, http.StatusBadRequest, p.GetStatus())
}

func TestToProblem_UnknownErrorIsGeneric500(t *testing.T) {
	out := ToProblem(context.Background(), errors.New("pq: connection reset"))

	var p *Problem
	require.ErrorAs(t, out, &p)
	assert.Equal(t, http.StatusInternalServerError, p.GetStatus())
	assert.Equal(t, InternalMessage, p.Message)
	assert.NotContains(t, p.Message, "pq")
}

func TestToProblem_PassesThroughStatusErrors(t *testing.T) {
	in := &Problem{Failed: true, Message: "Not logged in", Status: http.StatusUnauthorized}

	out := ToProblem(context.Background(), in)

	assert.Same(t, in, out)
	assert.Nil(t, ToProblem(context.Background(), nil))
}

func TestInstallErrorModel(t *testing.T) {
	orig := huma.NewError
	t.Cleanup(func() { huma.NewError = orig })
	InstallErrorModel()

	se := huma.NewError(http.StatusUnprocessableEntity, "validation failed", &huma.ErrorDetail{Location: "body.otp", Message: "expected string"})

	p, ok := se.(*Problem)
	require.True(t, ok)
	assert.True(t, p.Failed)
	assert.Equal(t, "validation failed", p.Message)
	assert.Equal(t, "ErrValidation", p.Code)
	require.Len(t, p.Errors, 1)
	assert.Equal(t, "body.otp", p.Errors[0].Location)

	se = huma.NewError(http.StatusInternalServerError, "")
	assert.Equal(t, InternalMessage, se.Error())
}
