package session

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userID = "0190f5d2-7c1e-7abc-9def-0123456789ab"

func TestIssueAndValidate(t *testing.T) {
	m := NewManager(Config{Secret: "s3cret"})

	tok, err := m.Issue(userID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), tok.ExpiresAt, time.Minute)

	got, err := m.Validate(tok.Value)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestValidate_Rejects(t *testing.T) {
	m := NewManager(Config{Secret: "s3cret", TTL: time.Hour})
	tok, err := m.Issue(userID)
	require.NoError(t, err)

	other := NewManager(Config{Secret: "different"})
	_, err = other.Validate(tok.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Validate("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = m.Validate(tok.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_RejectsOtherAlgorithms(t *testing.T) {
	m := NewManager(Config{Secret: "s3cret"})
	claims := jwt.RegisteredClaims{Subject: userID, ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = m.Validate(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssue_EmptyUser(t *testing.T) {
	_, err := NewManager(Config{Secret: "s"}).Issue("")
	assert.Error(t, err)
}

func TestCookie_Development(t *testing.T) {
	m := NewManager(Config{Secret: "s", Domain: "psych.dev"})
	c := m.Cookie(Token{Value: "tok", ExpiresAt: time.Now()})

	assert.Equal(t, CookieName, c.Name)
	assert.Equal(t, "tok", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 7*24*3600, c.MaxAge)
	assert.False(t, c.Secure)
	assert.False(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Empty(t, c.Domain)
}

func TestCookie_Production(t *testing.T) {
	m := NewManager(Config{Secret: "s", Production: true, Domain: "psych.dev"})
	c := m.Cookie(Token{Value: "tok"})

	assert.True(t, c.Secure)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteNoneMode, c.SameSite)
	assert.Equal(t, "psych.dev", c.Domain)
}

func TestClearCookie(t *testing.T) {
	c := NewManager(Config{Secret: "s"}).ClearCookie()

	assert.Equal(t, CookieName, c.Name)
	assert.Empty(t, c.Value)
	assert.Negative(t, c.MaxAge)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteNoneMode, c.SameSite)
}
