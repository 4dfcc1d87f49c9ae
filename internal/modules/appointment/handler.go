package appointment

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/delordemm1/psych-api/internal/contextx"
	"github.com/delordemm1/psych-api/internal/httpx"
	"github.com/delordemm1/psych-api/internal/middleware"
)

type Handler struct {
	service  Service
	sessions middleware.TokenValidator
	logger   *slog.Logger
}

func NewHandler(service Service, sessions middleware.TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{service: service, sessions: sessions, logger: logger}
}

func (h *Handler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "confirm-appointment",
		Method:      http.MethodPost,
		Path:        "/api/appointments/confirmation",
		Summary:     "E-mail an appointment confirmation to the student and the psychiatrist",
		Tags:        []string{"Appointments"},
		Middlewares: huma.Middlewares{middleware.SessionAuth(api, h.sessions, h.logger)},
	}, h.ConfirmHandler)
}

type ConfirmRequest struct {
	Body Booking
}

type ConfirmResponse struct {
	Body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
}

func (h *Handler) ConfirmHandler(ctx context.Context, input *ConfirmRequest) (*ConfirmResponse, error) {
	userID, _ := contextx.UserID(ctx)
	if err := h.service.Confirm(ctx, userID, input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &ConfirmResponse{}
	resp.Body.Success = true
	resp.Body.Message = "Email sent successfully"
	return resp, nil
}
