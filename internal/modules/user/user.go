package user

import (
	"time"
)

// AuthProvider tags how an account authenticates.
type AuthProvider string

const (
	AuthProviderLocal  AuthProvider = "local"
	AuthProviderGoogle AuthProvider = "google"
)

// User represents a user in the system.
// This is the core entity for the user module, used across the repository, service, and handler layers.
type User struct {
	ID             string       `db:"id"`
	FirstName      string       `db:"first_name"`
	LastName       string       `db:"last_name"`
	Email          string       `db:"email"`
	Username       string       `db:"username"`
	PasswordHash   *string      `db:"password_hash"`
	ProfilePicture string       `db:"profile_picture"`
	AuthProvider   AuthProvider `db:"auth_provider"`

	// OTP and OTPExpiresAt are written together: both set while a code is
	// pending, both nil otherwise.
	OTP          *string    `db:"otp"`
	OTPExpiresAt *time.Time `db:"otp_expires_at"`

	EmailSendFailed bool    `db:"email_send_failed"`
	LastEmailError  *string `db:"last_email_error"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// HasPendingOTP reports whether a code was issued and not yet consumed.
func (u *User) HasPendingOTP() bool {
	return u.OTP != nil && u.OTPExpiresAt != nil
}

// FullName is "First Last".
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// OAuthState is the short-lived PKCE state of a social login in progress.
type OAuthState struct {
	State     string       `json:"state"`
	Provider  AuthProvider `json:"provider"`
	Verifier  string       `json:"verifier"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// UserView is the public shape of a user: no credential, no OTP.
type UserView struct {
	ID              string    `json:"_id"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Email           string    `json:"email"`
	Username        string    `json:"username"`
	ProfilePicture  string    `json:"profilePicture"`
	AuthProvider    string    `json:"authProvider"`
	EmailVerified   bool      `json:"emailVerified"`
	EmailSendFailed bool      `json:"emailSendFailed,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func toView(u *User) *UserView {
	if u == nil {
		return nil
	}
	return &UserView{
		ID:              u.ID,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Email:           u.Email,
		Username:        u.Username,
		ProfilePicture:  u.ProfilePicture,
		AuthProvider:    string(u.AuthProvider),
		EmailVerified:   !u.HasPendingOTP(),
		EmailSendFailed: u.EmailSendFailed,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}
