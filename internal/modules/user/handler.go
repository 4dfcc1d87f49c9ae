package user

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/delordemm1/psych-api/internal/middleware"
	"github.com/delordemm1/psych-api/internal/session"
)

// Handler holds the dependencies for the user module's HTTP handlers.
type Handler struct {
	service  Service
	sessions *session.Manager
	logger   *slog.Logger
	// debug adds delivery diagnostics to registration responses.
	debug bool
}

// NewHandler creates a new handler for the user module.
func NewHandler(service Service, sessions *session.Manager, logger *slog.Logger, debug bool) *Handler {
	return &Handler{
		service:  service,
		sessions: sessions,
		logger:   logger,
		debug:    debug,
	}
}

// RegisterRoutes sets up the routing for the user module.
func (h *Handler) RegisterRoutes(api huma.API) {
	requireSession := huma.Middlewares{middleware.SessionAuth(api, h.sessions, h.logger)}

	// --- Authentication Routes ---
	huma.Register(api, huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          "/api/auth/register",
		Summary:       "Register a new user",
		Tags:          []string{"Auth"},
		DefaultStatus: http.StatusCreated,
		MaxBodyBytes:  maxPictureBytes + 1<<20,
	}, h.RegisterHandler)

	huma.Register(api, huma.Operation{
		OperationID: "verify-otp",
		Method:      http.MethodPost,
		Path:        "/api/auth/verify-otp",
		Summary:     "Verify the e-mailed OTP and log in",
		Tags:        []string{"Auth"},
	}, h.VerifyOTPHandler)

	huma.Register(api, huma.Operation{
		OperationID: "resend-otp",
		Method:      http.MethodPost,
		Path:        "/api/auth/resend-otp",
		Summary:     "Send a fresh OTP",
		Tags:        []string{"Auth"},
	}, h.ResendOTPHandler)

	huma.Register(api, huma.Operation{
		OperationID:   "login",
		Method:        http.MethodPost,
		Path:          "/api/auth/login",
		Summary:       "Log in a user",
		Tags:          []string{"Auth"},
		DefaultStatus: http.StatusAccepted,
	}, h.LoginHandler)

	huma.Register(api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/api/auth/logout",
		Summary:     "Log out the current user",
		Tags:        []string{"Auth"},
	}, h.LogoutHandler)

	huma.Register(api, huma.Operation{
		OperationID: "me",
		Method:      http.MethodGet,
		Path:        "/api/auth/me",
		Summary:     "Get the logged-in user",
		Tags:        []string{"Auth"},
		Middlewares: requireSession,
	}, h.MeHandler)

	// --- OAuth Routes ---
	huma.Register(api, huma.Operation{
		OperationID: "oauth-login",
		Method:      http.MethodGet,
		Path:        "/api/auth/oauth/{provider}",
		Summary:     "Initiate OAuth login",
		Tags:        []string{"Auth"},
	}, h.OAuthLoginHandler)

	huma.Register(api, huma.Operation{
		OperationID: "oauth-callback",
		Method:      http.MethodGet,
		Path:        "/api/auth/oauth/{provider}/callback",
		Summary:     "Handle OAuth callback",
		Tags:        []string{"Auth"},
	}, h.OAuthCallbackHandler)

	// --- Profile Routes ---
	huma.Register(api, huma.Operation{
		OperationID: "get-user-details",
		Method:      http.MethodGet,
		Path:        "/api/users/{userId}",
		Summary:     "Get a user with their questionnaire",
		Tags:        []string{"Users"},
	}, h.GetDetailsHandler)

	huma.Register(api, huma.Operation{
		OperationID: "update-profile",
		Method:      http.MethodPatch,
		Path:        "/api/users/{userId}",
		Summary:     "Update a profile and its questionnaire",
		Tags:        []string{"Users"},
	}, h.UpdateProfileHandler)

	huma.Register(api, huma.Operation{
		OperationID: "delete-account",
		Method:      http.MethodDelete,
		Path:        "/api/users/{userId}",
		Summary:     "Delete the caller's own account",
		Tags:        []string{"Users"},
		Middlewares: requireSession,
	}, h.DeleteAccountHandler)
}
