package user

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/delordemm1/psych-api/internal/metrics"
	"github.com/delordemm1/psych-api/internal/session"
	"github.com/delordemm1/psych-api/internal/storage"
	"github.com/delordemm1/psych-api/internal/validation"
)

// RegisterInput is a sign-up request. Picture is optional.
type RegisterInput struct {
	FirstName string       `json:"firstName" validate:"required"`
	LastName  string       `json:"lastName" validate:"required"`
	Email     string       `json:"email" validate:"required,email"`
	Password  string       `json:"password" validate:"required,min=6"`
	Username  string       `json:"username" validate:"required,min=3,max=20"`
	Picture   *ImageUpload `json:"-" validate:"-"`
}

// ImageUpload is an in-memory image with its MIME type.
type ImageUpload struct {
	Data        []byte
	ContentType string
}

// RegisterResult is the created user and how its OTP was delivered.
type RegisterResult struct {
	User     *User
	Delivery Delivery
}

// Register creates a local account with a pending OTP and dispatches the code.
// Once the record is stored, registration succeeds whatever the delivery outcome.
func (s *service) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = normalizeEmail(in.Email)
	in.Username = normalizeUsername(in.Username)
	if in.FirstName == "" || in.LastName == "" || in.Email == "" || in.Password == "" || in.Username == "" {
		return nil, ErrMissingFields
	}
	if err := validation.ValidateStruct(in); err != nil {
		return nil, err
	}
	if !emailInDomain(in.Email, s.config.Auth.AllowedEmailDomain) {
		return nil, ErrEmailDomain.WithDetail("Email must end with @" + s.config.Auth.AllowedEmailDomain)
	}
	if !validUsername(in.Username) {
		return nil, ErrInvalidUsername
	}

	exists, err := s.repo.ExistsByEmailOrUsername(ctx, in.Email, in.Username)
	if err != nil {
		s.logger.Error("failed to check existing user", "error", err)
		return nil, ErrInternal.WithCause(err)
	}
	if exists {
		metrics.AuthRegistrationsTotal.WithLabelValues(metrics.ResultFailure).Inc()
		return nil, ErrAlreadyExists
	}

	var (
		passwordHash string
		pictureURL   string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		h, err := hashPassword(in.Password)
		if err != nil {
			return err
		}
		passwordHash = h
		return nil
	})
	if in.Picture != nil {
		g.Go(func() error {
			pictureURL = s.uploadPicture(gctx, storage.ProfileKey(in.Username), in.Picture)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	code, err := generateOTP(s.config.Auth.OTPLength)
	if err != nil {
		return nil, ErrInternal.WithCause(err)
	}
	expiresAt := s.now().Add(s.config.Auth.OTPTTL)

	id, err := uuid.NewV7()
	if err != nil {
		return nil, ErrInternal.WithCause(err)
	}
	u := &User{
		ID:             id.String(),
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Email:          in.Email,
		Username:       in.Username,
		PasswordHash:   &passwordHash,
		ProfilePicture: pictureURL,
		AuthProvider:   AuthProviderLocal,
		OTP:            &code,
		OTPExpiresAt:   &expiresAt,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		metrics.AuthRegistrationsTotal.WithLabelValues(metrics.ResultFailure).Inc()
		if errors.Is(err, ErrDuplicateInsert) {
			return nil, err
		}
		s.logger.Error("failed to create user", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	metrics.AuthRegistrationsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	s.logger.Info("user registered", "user_id", u.ID)

	return &RegisterResult{User: u, Delivery: s.deliverOTP(ctx, u, code)}, nil
}

// uploadPicture stores img under key and returns its URL, or "" when the
// upload fails or runs past the upload timeout.
func (s *service) uploadPicture(ctx context.Context, key string, img *ImageUpload) string {
	if timeout := s.config.Auth.UploadTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	url, err := s.images.Upload(ctx, key, bytes.NewReader(img.Data), int64(len(img.Data)), img.ContentType)
	if err != nil {
		if !errors.Is(err, storage.ErrDisabled) {
			s.logger.Warn("profile picture upload failed, continuing without it", "key", key, "error", err)
		}
		return ""
	}
	return url
}

// Login checks credentials and issues a session token.
func (s *service) Login(ctx context.Context, email, password string) (*User, session.Token, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, session.Token{}, ErrCredentialsRequired
	}

	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			metrics.AuthLoginsTotal.WithLabelValues(metrics.ResultFailure).Inc()
			return nil, session.Token{}, ErrUnknownAccount
		}
		s.logger.Error("failed to find user by email", "error", err)
		return nil, session.Token{}, ErrInternal.WithCause(err)
	}

	// Accounts created through Google have no password.
	if u.PasswordHash == nil || !checkPasswordHash(password, *u.PasswordHash) {
		metrics.AuthLoginsTotal.WithLabelValues(metrics.ResultFailure).Inc()
		return nil, session.Token{}, ErrInvalidCredentials
	}

	token, err := s.sessions.Issue(u.ID)
	if err != nil {
		s.logger.Error("failed to issue session", "error", err)
		return nil, session.Token{}, ErrInternal.WithCause(err)
	}

	metrics.AuthLoginsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	s.logger.Info("user logged in", "user_id", u.ID)
	return u, token, nil
}
