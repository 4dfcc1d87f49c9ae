package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/delordemm1/psych-api/internal/contextx"
	"github.com/delordemm1/psych-api/internal/session"
)

// TokenValidator resolves a session token to a user id.
type TokenValidator interface {
	Validate(token string) (string, error)
}

// SessionAuth is a Huma middleware that reads the session cookie (or a
// Bearer token for non-browser clients), validates it and stores the user id
// under contextx.UserIDKey. Requests without a valid session get a 401.
func SessionAuth(api huma.API, sessions TokenValidator, logger *slog.Logger) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		token := sessionToken(ctx)
		if token == "" {
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "Not logged in")
			return
		}

		userID, err := sessions.Validate(token)
		if err != nil {
			logger.Warn("rejected session token", "path", ctx.URL().Path, "error", err)
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "Session expired, please log in again")
			return
		}

		next(huma.WithValue(ctx, contextx.UserIDKey, userID))
	}
}

func sessionToken(ctx huma.Context) string {
	if raw := ctx.Header("Cookie"); raw != "" {
		if cookies, err := http.ParseCookie(raw); err == nil {
			for _, c := range cookies {
				if c.Name == session.CookieName && c.Value != "" {
					return c.Value
				}
			}
		}
	}
	if token, ok := strings.CutPrefix(ctx.Header("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
