// Package session issues and validates the stateless session token carried
// in the accessToken cookie.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the cookie the frontend sends back on every request.
const CookieName = "accessToken"

// ErrInvalidToken covers malformed, badly signed and expired tokens.
var ErrInvalidToken = errors.New("invalid or expired session token")

// Config controls token lifetime and cookie attributes.
type Config struct {
	Secret string
	TTL    time.Duration
	// Production switches cookies to Secure, HttpOnly, SameSite=None.
	Production bool
	// Domain is applied to production cookies only.
	Domain string
}

// Token is a signed session token and its expiry.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Manager signs HS256 tokens whose subject is the user id.
type Manager struct {
	cfg Config
	now func() time.Time
}

func NewManager(cfg Config) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = 7 * 24 * time.Hour
	}
	return &Manager{cfg: cfg, now: time.Now}
}

// TTL is the lifetime of issued tokens.
func (m *Manager) TTL() time.Duration { return m.cfg.TTL }

// Issue mints a token for userID.
func (m *Manager) Issue(userID string) (Token, error) {
	if userID == "" {
		return Token{}, errors.New("issue session: empty user id")
	}
	now := m.now()
	exp := now.Add(m.cfg.TTL)
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.cfg.Secret))
	if err != nil {
		return Token{}, fmt.Errorf("sign session token: %w", err)
	}
	return Token{Value: signed, ExpiresAt: exp}, nil
}

// Validate checks signature and expiry and returns the user id.
func (m *Manager) Validate(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(m.cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}

// Cookie wraps t in the session cookie.
func (m *Manager) Cookie(t Token) http.Cookie {
	c := http.Cookie{
		Name:    CookieName,
		Value:   t.Value,
		Path:    "/",
		MaxAge:  int(m.cfg.TTL.Seconds()),
		Expires: t.ExpiresAt,
	}
	if m.cfg.Production {
		c.Secure = true
		c.HttpOnly = true
		c.SameSite = http.SameSiteNoneMode
		c.Domain = m.cfg.Domain
	} else {
		c.SameSite = http.SameSiteLaxMode
	}
	return c
}

// ClearCookie expires the session cookie. SameSite=None with Secure matches
// how the cookie is set cross-site in production.
func (m *Manager) ClearCookie() http.Cookie {
	c := http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
	if m.cfg.Production {
		c.HttpOnly = true
		c.Domain = m.cfg.Domain
	}
	return c
}
