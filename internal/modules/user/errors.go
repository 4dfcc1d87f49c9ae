package user

import (
	"net/http"

	"github.com/delordemm1/psych-api/internal/domainerr"
)

// Messages match what the web client already displays.
var (
	// Registration
	ErrMissingFields   = domainerr.New("ErrMissingFields", http.StatusBadRequest, "All fields are required!")
	ErrAlreadyExists   = domainerr.New("ErrAlreadyExists", http.StatusBadRequest, "Email or Username already registered!")
	ErrDuplicateInsert = domainerr.New("ErrDuplicateInsert", http.StatusBadRequest, "Username or email already in use!")
	ErrEmailDomain     = domainerr.New("ErrEmailDomain", http.StatusBadRequest, "Email must be from an allowed domain")
	ErrInvalidUsername = domainerr.New("ErrInvalidUsername", http.StatusBadRequest, "Username may only contain lowercase letters, digits, '.', '_' and '-'")
	ErrPictureTooLarge = domainerr.New("ErrPictureTooLarge", http.StatusBadRequest, "Profile picture must be 5 MB or smaller")

	// OTP
	ErrOTPFieldsRequired = domainerr.New("ErrOTPFieldsRequired", http.StatusBadRequest, "OTP and User ID are required.")
	ErrOTPNotPending     = domainerr.New("ErrOTPNotPending", http.StatusBadRequest, "OTP not set or expired.")
	ErrInvalidOTP        = domainerr.New("ErrInvalidOTP", http.StatusBadRequest, "Invalid OTP.")
	ErrOTPExpired        = domainerr.New("ErrOTPExpired", http.StatusBadRequest, "OTP expired.")
	ErrUserIDRequired    = domainerr.New("ErrUserIDRequired", http.StatusBadRequest, "User ID is required")

	// Login
	ErrCredentialsRequired = domainerr.New("ErrCredentialsRequired", http.StatusBadRequest, "Email and password are required!")
	ErrUnknownAccount      = domainerr.New("ErrUnknownAccount", http.StatusNotFound, "Check email or password!")
	ErrInvalidCredentials  = domainerr.New("ErrInvalidCredentials", http.StatusUnauthorized, "Check email or password!")

	// Resource & identity
	ErrNotFound         = domainerr.New("ErrNotFound", http.StatusNotFound, "User not found.")
	ErrDetailsNotFound  = domainerr.New("ErrDetailsNotFound", http.StatusNotFound, "User not found")
	ErrForbiddenDelete  = domainerr.New("ErrForbiddenDelete", http.StatusForbidden, "Invalid request!. Cannot delete other user accounts.")
	ErrProfileRequired  = domainerr.New("ErrProfileRequired", http.StatusBadRequest, "Profile and questionnaire data are required")
	ErrUsernameConflict = domainerr.New("ErrUsernameConflict", http.StatusBadRequest, "Username already in use!")

	// OAuth
	ErrUnsupportedOAuthProvider = domainerr.New("ErrUnsupportedOAuthProvider", http.StatusBadRequest, "unsupported oauth provider")
	ErrOAuthStateInvalid        = domainerr.New("ErrOAuthStateInvalid", http.StatusBadRequest, "invalid oauth state")
	ErrOAuthStateExpired        = domainerr.New("ErrOAuthStateExpired", http.StatusBadRequest, "oauth state has expired")
	ErrOAuthExchangeFailed      = domainerr.New("ErrOAuthExchangeFailed", http.StatusUnauthorized, "oauth authentication failed")
	ErrOAuthEmailMissing        = domainerr.New("ErrOAuthEmailMissing", http.StatusBadRequest, "email not provided by oauth provider")
	ErrOAuthEmailUnverified     = domainerr.New("ErrOAuthEmailUnverified", http.StatusForbidden, "email not verified by oauth provider")

	// Generic internal
	ErrInternal = domainerr.New("ErrInternal", http.StatusInternalServerError, "Something went wrong!")
)
