package user

import (
	"context"

	"github.com/delordemm1/psych-api/internal/contextx"
	"github.com/delordemm1/psych-api/internal/httpx"
	"github.com/delordemm1/psych-api/internal/modules/questionnaire"
)

// --- DTOs ---

type UserPathRequest struct {
	UserID string `path:"userId"`
}

type DetailsData struct {
	User          *UserView                    `json:"user"`
	Questionnaire *questionnaire.Questionnaire `json:"questionnaire"`
}

type DetailsResponse struct {
	Body struct {
		Error   bool        `json:"error"`
		Message string      `json:"message"`
		Data    DetailsData `json:"data"`
	}
}

type profileFields struct {
	FirstName      *string `json:"firstName,omitempty"`
	LastName       *string `json:"lastName,omitempty"`
	Username       *string `json:"username,omitempty"`
	ProfilePicture *string `json:"profilePicture,omitempty"`
}

type UpdateProfileRequest struct {
	UserID string `path:"userId"`
	Body   struct {
		Profile       *profileFields         `json:"profile,omitempty"`
		Questionnaire []questionnaire.Answer `json:"questionnaire,omitempty"`
	}
}

// UpdatedProfileData keeps the "ques" key the web client reads.
type UpdatedProfileData struct {
	User *UserView                    `json:"user"`
	Ques *questionnaire.Questionnaire `json:"ques"`
}

type UpdateProfileResponse struct {
	Body struct {
		Error   bool               `json:"error"`
		Message string             `json:"message"`
		Data    UpdatedProfileData `json:"data"`
	}
}

type DeleteAccountResponse struct {
	Body struct {
		Error   bool   `json:"error"`
		Message string `json:"message"`
	}
}

// --- Handlers ---

func (h *Handler) GetDetailsHandler(ctx context.Context, input *UserPathRequest) (*DetailsResponse, error) {
	u, q, err := h.service.GetDetails(ctx, input.UserID)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &DetailsResponse{}
	resp.Body.Message = "User details fetched successfully!"
	resp.Body.Data.User = toView(u)
	resp.Body.Data.Questionnaire = q
	return resp, nil
}

// UpdateProfileHandler edits profile fields and replaces the questionnaire.
func (h *Handler) UpdateProfileHandler(ctx context.Context, input *UpdateProfileRequest) (*UpdateProfileResponse, error) {
	p := input.Body.Profile
	if p == nil || input.Body.Questionnaire == nil {
		return nil, httpx.ToProblem(ctx, ErrProfileRequired)
	}

	u, q, err := h.service.UpdateProfile(ctx, input.UserID, UpdateProfileInput{
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Username:       p.Username,
		ProfilePicture: p.ProfilePicture,
		Answers:        input.Body.Questionnaire,
	})
	if err != nil {
		h.logger.Warn("profile update failed", "user_id", input.UserID, "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &UpdateProfileResponse{}
	resp.Body.Message = "Updated successfully"
	resp.Body.Data.User = toView(u)
	resp.Body.Data.Ques = q
	return resp, nil
}

// DeleteAccountHandler deletes the account named in the path, which must be
// the caller's own.
func (h *Handler) DeleteAccountHandler(ctx context.Context, input *UserPathRequest) (*DeleteAccountResponse, error) {
	callerID, _ := contextx.UserID(ctx)
	if err := h.service.DeleteAccount(ctx, callerID, input.UserID); err != nil {
		h.logger.Warn("account deletion rejected", "caller_id", callerID, "target_id", input.UserID, "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &DeleteAccountResponse{}
	resp.Body.Message = "Account successfully deleted!"
	return resp, nil
}
