package user

import (
	"context"
	"net/http"

	"github.com/delordemm1/psych-api/internal/httpx"
)

// --- DTOs ---

// OAuthLoginRequest defines the provider being requested from the URL path.
type OAuthLoginRequest struct {
	Provider string `path:"provider"`
}

// OAuthLoginResponse carries the consent URL; the web client performs the redirect.
type OAuthLoginResponse struct {
	Body struct {
		RedirectURL string `json:"redirectUrl"`
	}
}

// OAuthCallbackRequest defines the query parameters sent by the OAuth provider.
type OAuthCallbackRequest struct {
	Provider string `path:"provider"`
	Code     string `query:"code"`
	State    string `query:"state"`
}

type OAuthCallbackResponse struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      struct {
		Error   bool      `json:"error"`
		Message string    `json:"message"`
		User    *UserView `json:"user"`
	}
}

// --- Handlers ---

func (h *Handler) OAuthLoginHandler(ctx context.Context, input *OAuthLoginRequest) (*OAuthLoginResponse, error) {
	redirectURL, err := h.service.InitiateOAuthLogin(ctx, AuthProvider(input.Provider))
	if err != nil {
		h.logger.Error("failed to initiate oauth login", "provider", input.Provider, "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &OAuthLoginResponse{}
	resp.Body.RedirectURL = redirectURL
	return resp, nil
}

// OAuthCallbackHandler finishes the login and sets the session cookie.
func (h *Handler) OAuthCallbackHandler(ctx context.Context, input *OAuthCallbackRequest) (*OAuthCallbackResponse, error) {
	u, token, err := h.service.HandleOAuthCallback(ctx, AuthProvider(input.Provider), input.State, input.Code)
	if err != nil {
		h.logger.Warn("oauth callback failed", "provider", input.Provider, "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &OAuthCallbackResponse{SetCookie: h.sessions.Cookie(token)}
	resp.Body.Message = "Login successful!"
	resp.Body.User = toView(u)
	return resp, nil
}
