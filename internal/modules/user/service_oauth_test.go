package user

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startOAuth(t *testing.T, f *fixture) string {
	t.Helper()
	redirect, err := f.svc.InitiateOAuthLogin(context.Background(), AuthProviderGoogle)
	require.NoError(t, err)
	u, err := url.Parse(redirect)
	require.NoError(t, err)
	state := u.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

func TestInitiateOAuthLogin_StoresState(t *testing.T) {
	f := newFixture(t)

	state := startOAuth(t, f)

	stored := f.states.states[state]
	require.NotNil(t, stored)
	assert.Equal(t, AuthProviderGoogle, stored.Provider)
	assert.NotEmpty(t, stored.Verifier)
	assert.Equal(t, testNow.Add(oauthStateTTL), stored.ExpiresAt)
}

func TestInitiateOAuthLogin_UnsupportedProvider(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.InitiateOAuthLogin(context.Background(), "apple")
	assert.ErrorIs(t, err, ErrUnsupportedOAuthProvider)
}

func TestHandleOAuthCallback_ProvisionsUser(t *testing.T) {
	// "priya" is taken by a local account with another e-mail.
	taken := verifiedUser(bobID, "priya")
	taken.Email = "priya.other@iiita.ac.in"
	f := newFixture(t, taken)
	f.google.info = &oAuthUserInfo{Email: "Priya@iiita.ac.in", EmailVerified: true, GivenName: "Priya", FamilyName: "Nair"}
	state := startOAuth(t, f)
	verifier := f.states.states[state].Verifier

	u, token, err := f.svc.HandleOAuthCallback(context.Background(), AuthProviderGoogle, state, "code-1")
	require.NoError(t, err)

	assert.Equal(t, verifier, f.google.gotVerifier)
	assert.Equal(t, "priya@iiita.ac.in", u.Email)
	assert.Equal(t, "priya1", u.Username)
	assert.Equal(t, AuthProviderGoogle, u.AuthProvider)
	assert.Nil(t, u.PasswordHash)
	assert.False(t, u.HasPendingOTP())
	assert.NotNil(t, f.repo.get(u.ID))

	sub, err := f.sessions.Validate(token.Value)
	require.NoError(t, err)
	assert.Equal(t, u.ID, sub)

	// The state is single-use.
	_, _, err = f.svc.HandleOAuthCallback(context.Background(), AuthProviderGoogle, state, "code-1")
	assert.ErrorIs(t, err, ErrOAuthStateInvalid)
}

func TestHandleOAuthCallback_ExistingUser(t *testing.T) {
	f := newFixture(t, verifiedUser(bobID, "bob"))
	f.google.info = &oAuthUserInfo{Email: "bob@iiita.ac.in", EmailVerified: true}
	state := startOAuth(t, f)

	u, _, err := f.svc.HandleOAuthCallback(context.Background(), AuthProviderGoogle, state, "code")
	require.NoError(t, err)
	assert.Equal(t, bobID, u.ID)
	assert.Len(t, f.repo.users, 1)
}

func TestHandleOAuthCallback_Rejects(t *testing.T) {
	t.Run("unknown state", func(t *testing.T) {
		f := newFixture(t)
		_, _, err := f.svc.HandleOAuthCallback(context.Background(), AuthProviderGoogle, "nope", "code")
		assert.ErrorIs(t, err, ErrOAuthStateInvalid)
	})
	t.Run("exchange failure", func(t *testing.T) {
		f := newFixture(t)
		f.google.err = errors.New("invalid_grant")
		state := startOAuth(t, f)
		_, _, err := f.svc.HandleOAuthCallback(context.Background(), AuthProviderGoogle, state, "code")
		assert.ErrorIs(t, err, ErrOAuthExchangeFailed)
	})
	t.Run("no email", func(t *testing.T) {
		f := newFixture(t)
		f.google.info = &oAuthUserInfo{}
		state := startOAuth(t, f)
		_, _, err := f.svc.HandleOAuthCallback(context.Background(), AuthProviderGoogle, state, "code")
		assert.ErrorIs(t, err, ErrOAuthEmailMissing)
	})
	t.Run("outside domain", func(t *testing.T) {
		f := newFixture(t)
		f.google.info = &oAuthUserInfo{Email: "someone@gmail.com"}
		state := startOAuth(t, f)
		_, _, err := f.svc.HandleOAuthCallback(context.Background(), AuthProviderGoogle, state, "code")
		assert.ErrorIs(t, err, ErrEmailDomain)
		assert.Empty(t, f.repo.users)
	})
	t.Run("unverified email", func(t *testing.T) {
		f := newFixture(t, verifiedUser(bobID, "bob"))
		f.google.info = &oAuthUserInfo{Email: "bob@iiita.ac.in", EmailVerified: false}
		state := startOAuth(t, f)
		_, _, err := f.svc.HandleOAuthCallback(context.Background(), AuthProviderGoogle, state, "code")
		assert.ErrorIs(t, err, ErrOAuthEmailUnverified)
		assert.Len(t, f.repo.users, 1)
	})
	t.Run("unverified email is not provisioned", func(t *testing.T) {
		f := newFixture(t)
		f.google.info = &oAuthUserInfo{Email: "carol@iiita.ac.in"}
		state := startOAuth(t, f)
		_, _, err := f.svc.HandleOAuthCallback(context.Background(), AuthProviderGoogle, state, "code")
		assert.ErrorIs(t, err, ErrOAuthEmailUnverified)
		assert.Empty(t, f.repo.users)
	})
}
