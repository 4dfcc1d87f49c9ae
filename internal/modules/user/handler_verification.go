package user

import (
	"context"
	"net/http"

	"github.com/delordemm1/psych-api/internal/httpx"
)

// --- DTOs ---

type VerifyOTPRequest struct {
	Body struct {
		UserID string `json:"userId,omitempty"`
		OTP    string `json:"otp,omitempty"`
	}
}

type VerifyOTPResponse struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
}

type ResendOTPRequest struct {
	Body struct {
		UserID string `json:"userId,omitempty"`
	}
}

type ResendOTPResponse struct {
	Body struct {
		Error     bool   `json:"error"`
		Message   string `json:"message"`
		EmailSent bool   `json:"emailSent"`
	}
}

// --- Handlers ---

// VerifyOTPHandler consumes the OTP and starts a session.
func (h *Handler) VerifyOTPHandler(ctx context.Context, input *VerifyOTPRequest) (*VerifyOTPResponse, error) {
	token, err := h.service.VerifyOTP(ctx, input.Body.UserID, input.Body.OTP)
	if err != nil {
		h.logger.Warn("otp verification failed", "user_id", input.Body.UserID, "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &VerifyOTPResponse{SetCookie: h.sessions.Cookie(token)}
	resp.Body.Success = true
	resp.Body.Message = "Email verified and user logged in."
	return resp, nil
}

func (h *Handler) ResendOTPHandler(ctx context.Context, input *ResendOTPRequest) (*ResendOTPResponse, error) {
	d, err := h.service.ResendOTP(ctx, input.Body.UserID)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &ResendOTPResponse{}
	resp.Body.Message = "OTP resent successfully!"
	resp.Body.EmailSent = d.EmailSent
	return resp, nil
}
