package appointment

import (
	"io"
	"log/slog"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delordemm1/psych-api/internal/httpx"
	"github.com/delordemm1/psych-api/internal/session"
)

func TestConfirmHandler(t *testing.T) {
	httpx.InstallErrorModel()
	_, api := humatest.New(t)
	sessions := session.NewManager(session.Config{Secret: "s3cret"})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	NewHandler(newService(&recordingMailer{}, true), sessions, logger).RegisterRoutes(api)

	body := map[string]any{
		"doctor":       map[string]any{"name": "Dr. Mehta", "email": "mehta@clinic.example", "specialization": "Anxiety", "fee": 40},
		"selectedDate": "2025-03-20",
		"selectedTime": "10:30",
	}

	resp := api.Post("/api/appointments/confirmation", body)
	require.Equal(t, 401, resp.Code)
	assert.Contains(t, resp.Body.String(), "Not logged in")

	tok, err := sessions.Issue(studentID)
	require.NoError(t, err)
	resp = api.Post("/api/appointments/confirmation", "Cookie: accessToken="+tok.Value, body)
	require.Equal(t, 200, resp.Code, resp.Body.String())
	assert.JSONEq(t, `{"success":true,"message":"Email sent successfully"}`, resp.Body.String())
}
