package user

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/delordemm1/psych-api/internal/config"
	"github.com/delordemm1/psych-api/internal/session"
)

const (
	oauthStateTTL       = 5 * time.Minute
	googleUserInfoURL   = "https://www.googleapis.com/oauth2/v2/userinfo"
	maxUsernameAttempts = 20
)

// oAuthUserInfo holds the standardized user information extracted from a provider.
type oAuthUserInfo struct {
	ID            string
	Email         string
	EmailVerified bool
	GivenName     string
	FamilyName    string
	Picture       string
}

// OAuthProvider is a PKCE authorization-code provider.
type OAuthProvider interface {
	AuthCodeURL(state, verifier string) string
	// Exchange trades the code for a token and returns the account profile.
	Exchange(ctx context.Context, code, verifier string) (*oAuthUserInfo, error)
}

type googleProvider struct {
	config *oauth2.Config
}

func newGoogleProvider(cfg config.GoogleConfig) *googleProvider {
	return &googleProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
		},
	}
}

func (g *googleProvider) AuthCodeURL(state, verifier string) string {
	return g.config.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
}

func (g *googleProvider) Exchange(ctx context.Context, code, verifier string) (*oAuthUserInfo, error) {
	token, err := g.config.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	resp, err := g.config.Client(ctx, token).Get(googleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("get user info from google: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google user info returned %s", resp.Status)
	}

	var info struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
		GivenName     string `json:"given_name"`
		FamilyName    string `json:"family_name"`
		Picture       string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	return &oAuthUserInfo{
		ID:            info.ID,
		Email:         info.Email,
		EmailVerified: info.VerifiedEmail,
		GivenName:     info.GivenName,
		FamilyName:    info.FamilyName,
		Picture:       info.Picture,
	}, nil
}

func (s *service) provider(p AuthProvider) (OAuthProvider, error) {
	if p != AuthProviderGoogle {
		return nil, ErrUnsupportedOAuthProvider.WithDetail(fmt.Sprintf("unsupported oauth provider: %s", p))
	}
	return s.google, nil
}

// InitiateOAuthLogin stores a fresh state and PKCE verifier and returns the
// provider's consent URL.
func (s *service) InitiateOAuthLogin(ctx context.Context, p AuthProvider) (string, error) {
	provider, err := s.provider(p)
	if err != nil {
		return "", err
	}

	state, err := generateState()
	if err != nil {
		return "", ErrInternal.WithCause(fmt.Errorf("generate oauth state: %w", err))
	}
	verifier := oauth2.GenerateVerifier()

	if err := s.states.Save(ctx, &OAuthState{
		State:     state,
		Provider:  p,
		Verifier:  verifier,
		ExpiresAt: s.now().Add(oauthStateTTL),
	}); err != nil {
		s.logger.Error("failed to store oauth state", "error", err)
		return "", ErrInternal.WithCause(err)
	}

	return provider.AuthCodeURL(state, verifier), nil
}

// HandleOAuthCallback validates the state, exchanges the code, and finds or
// provisions the matching account.
func (s *service) HandleOAuthCallback(ctx context.Context, p AuthProvider, state, code string) (*User, session.Token, error) {
	provider, err := s.provider(p)
	if err != nil {
		return nil, session.Token{}, err
	}
	if state == "" || code == "" {
		return nil, session.Token{}, ErrOAuthStateInvalid
	}

	stored, err := s.states.Take(ctx, state)
	if err != nil {
		if errors.Is(err, ErrOAuthStateInvalid) || errors.Is(err, ErrOAuthStateExpired) {
			return nil, session.Token{}, err
		}
		s.logger.Error("failed to load oauth state", "error", err)
		return nil, session.Token{}, ErrInternal.WithCause(err)
	}
	if stored.Provider != p {
		return nil, session.Token{}, ErrOAuthStateInvalid
	}

	info, err := provider.Exchange(ctx, code, stored.Verifier)
	if err != nil {
		s.logger.Warn("oauth exchange failed", "provider", p, "error", err)
		return nil, session.Token{}, ErrOAuthExchangeFailed.WithCause(err)
	}
	email := normalizeEmail(info.Email)
	if email == "" {
		return nil, session.Token{}, ErrOAuthEmailMissing
	}
	if !emailInDomain(email, s.config.Auth.AllowedEmailDomain) {
		return nil, session.Token{}, ErrEmailDomain
	}
	// Only provider-verified addresses are linked or provisioned.
	if !info.EmailVerified {
		s.logger.Warn("oauth email not verified by provider", "provider", p, "email", email)
		return nil, session.Token{}, ErrOAuthEmailUnverified
	}

	u, err := s.repo.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrNotFound):
		if u, err = s.provisionOAuthUser(ctx, p, email, info); err != nil {
			return nil, session.Token{}, err
		}
	case err != nil:
		s.logger.Error("failed to find user during oauth callback", "error", err)
		return nil, session.Token{}, ErrInternal.WithCause(err)
	}

	token, err := s.sessions.Issue(u.ID)
	if err != nil {
		return nil, session.Token{}, ErrInternal.WithCause(err)
	}

	s.logger.Info("user logged in via oauth", "provider", p, "user_id", u.ID)
	return u, token, nil
}

func (s *service) provisionOAuthUser(ctx context.Context, p AuthProvider, email string, info *oAuthUserInfo) (*User, error) {
	username, err := s.freeUsername(ctx, usernameFromEmail(email))
	if err != nil {
		return nil, err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, ErrInternal.WithCause(err)
	}

	first, last := strings.TrimSpace(info.GivenName), strings.TrimSpace(info.FamilyName)
	if first == "" {
		first = username
	}
	u := &User{
		ID:             id.String(),
		FirstName:      first,
		LastName:       last,
		Email:          email,
		Username:       username,
		ProfilePicture: info.Picture,
		AuthProvider:   p,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		s.logger.Error("failed to create user from oauth", "error", err)
		if errors.Is(err, ErrDuplicateInsert) {
			return nil, err
		}
		return nil, ErrInternal.WithCause(err)
	}

	s.logger.Info("user provisioned via oauth", "provider", p, "user_id", u.ID)
	return u, nil
}

// freeUsername returns base, or base with the first numeric suffix not yet taken.
func (s *service) freeUsername(ctx context.Context, base string) (string, error) {
	candidate := base
	for i := 1; i <= maxUsernameAttempts; i++ {
		taken, err := s.repo.UsernameExists(ctx, candidate)
		if err != nil {
			return "", ErrInternal.WithCause(err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = withSuffix(base, i)
	}
	return "", ErrUsernameConflict
}

// generateState creates a random, URL-safe state value.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
