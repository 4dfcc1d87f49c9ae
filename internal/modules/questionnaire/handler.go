package questionnaire

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/delordemm1/psych-api/internal/httpx"
)

type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "submit-questionnaire",
		Method:        http.MethodPost,
		Path:          "/api/questionnaire",
		Summary:       "Submit the onboarding questionnaire",
		Tags:          []string{"Questionnaire"},
		DefaultStatus: http.StatusCreated,
	}, h.SubmitHandler)
}

// SubmitRequest fields are optional at the schema level so that missing
// values produce the client-facing 400 messages instead of a schema error.
type SubmitRequest struct {
	Body struct {
		UserID  string   `json:"userId,omitempty"`
		Answers []Answer `json:"answers,omitempty"`
	}
}

type SubmitResponse struct {
	Body struct {
		Message string         `json:"message"`
		Data    *Questionnaire `json:"data"`
	}
}

func (h *Handler) SubmitHandler(ctx context.Context, input *SubmitRequest) (*SubmitResponse, error) {
	q, err := h.service.Submit(ctx, input.Body.UserID, input.Body.Answers)
	if err != nil {
		h.logger.Warn("questionnaire submission rejected", "user_id", input.Body.UserID, "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &SubmitResponse{}
	resp.Body.Message = "Questionnaire submitted successfully"
	resp.Body.Data = q
	return resp, nil
}
