package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "iiita.ac.in", cfg.Auth.AllowedEmailDomain)
	assert.Equal(t, 6, cfg.Auth.OTPLength)
	assert.Equal(t, 10*time.Minute, cfg.Auth.OTPTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, 15*time.Second, cfg.Auth.DeliveryTimeout)
	assert.Equal(t, 10*time.Second, cfg.Auth.UploadTimeout)
	assert.Equal(t, 3, cfg.Queue.Attempts)
	assert.Equal(t, 2*time.Second, cfg.Queue.Backoff)
	assert.Equal(t, 2*time.Second, cfg.Queue.InitialDelay)
	assert.Equal(t, "emails", cfg.Queue.Name)
	assert.Equal(t, 24*time.Hour, cfg.Queue.Retention)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.AllowedOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SERVER_ENV", "production")
	t.Setenv("SERVER_PORT", "3000")
	t.Setenv("ALLOWED_ORIGINS", "https://psych.example.com, http://localhost:5173")
	t.Setenv("AUTH_DELIVERY_TIMEOUT", "5s")
	t.Setenv("QUEUE_ATTEMPTS", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, []string{"https://psych.example.com", "http://localhost:5173"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 5*time.Second, cfg.Auth.DeliveryTimeout)
	assert.Equal(t, 5, cfg.Queue.Attempts)
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_InvalidOTPLength(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("AUTH_OTP_LENGTH", "2")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_OTP_LENGTH")
}
