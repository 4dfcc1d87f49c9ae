package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delordemm1/psych-api/internal/contextx"
	"github.com/delordemm1/psych-api/internal/httpx"
	"github.com/delordemm1/psych-api/internal/session"
)

type whoamiOutput struct {
	Body struct {
		UserID string `json:"userId"`
	}
}

func newProtectedAPI(t *testing.T, sessions *session.Manager) humatest.TestAPI {
	t.Helper()
	httpx.InstallErrorModel()
	_, api := humatest.New(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	huma.Register(api, huma.Operation{
		OperationID: "whoami",
		Method:      http.MethodGet,
		Path:        "/whoami",
		Middlewares: huma.Middlewares{SessionAuth(api, sessions, logger)},
	}, func(ctx context.Context, _ *struct{}) (*whoamiOutput, error) {
		out := &whoamiOutput{}
		out.Body.UserID, _ = contextx.UserID(ctx)
		return out, nil
	})
	return api
}

func TestSessionAuth_Cookie(t *testing.T) {
	sessions := session.NewManager(session.Config{Secret: "s3cret"})
	api := newProtectedAPI(t, sessions)
	tok, err := sessions.Issue("user-1")
	require.NoError(t, err)

	resp := api.Get("/whoami", "Cookie: theme=dark; accessToken="+tok.Value)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"userId":"user-1"}`, resp.Body.String())
}

func TestSessionAuth_BearerFallback(t *testing.T) {
	sessions := session.NewManager(session.Config{Secret: "s3cret"})
	api := newProtectedAPI(t, sessions)
	tok, err := sessions.Issue("user-2")
	require.NoError(t, err)

	resp := api.Get("/whoami", "Authorization: Bearer "+tok.Value)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "user-2")
}

func TestSessionAuth_Rejects(t *testing.T) {
	sessions := session.NewManager(session.Config{Secret: "s3cret"})
	api := newProtectedAPI(t, sessions)

	resp := api.Get("/whoami")
	require.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), `"error":true`)
	assert.Contains(t, resp.Body.String(), "Not logged in")

	resp = api.Get("/whoami", "Cookie: accessToken=garbage")
	require.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), "Session expired")
}

func TestWithMetrics_PassesThroughStatus(t *testing.T) {
	r := chi.NewRouter()
	r.Use(WithMetrics)
	r.Get("/api/users/{userId}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/abc", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}
