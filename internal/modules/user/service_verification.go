package user

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/delordemm1/psych-api/internal/session"
)

// VerifyOTP consumes a pending code and signs the user in. A wrong or
// expired code leaves the pending state untouched.
func (s *service) VerifyOTP(ctx context.Context, userID, otp string) (session.Token, error) {
	userID, otp = strings.TrimSpace(userID), strings.TrimSpace(otp)
	if userID == "" || otp == "" {
		return session.Token{}, ErrOTPFieldsRequired
	}

	u, err := s.findUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return session.Token{}, ErrOTPNotPending
		}
		return session.Token{}, err
	}
	if !u.HasPendingOTP() {
		return session.Token{}, ErrOTPNotPending
	}
	if *u.OTP != otp {
		return session.Token{}, ErrInvalidOTP
	}
	if s.now().After(*u.OTPExpiresAt) {
		return session.Token{}, ErrOTPExpired
	}

	if err := s.repo.ClearOTP(ctx, u.ID); err != nil {
		s.logger.Error("failed to clear otp", "user_id", u.ID, "error", err)
		return session.Token{}, ErrInternal.WithCause(err)
	}

	token, err := s.sessions.Issue(u.ID)
	if err != nil {
		return session.Token{}, ErrInternal.WithCause(err)
	}

	s.logger.Info("email verified", "user_id", u.ID)
	return token, nil
}

// ResendOTP replaces the pending code with a fresh one and delivers it the
// same way registration does.
func (s *service) ResendOTP(ctx context.Context, userID string) (*Delivery, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	u, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	code, err := generateOTP(s.config.Auth.OTPLength)
	if err != nil {
		return nil, ErrInternal.WithCause(err)
	}
	expiresAt := s.now().Add(s.config.Auth.OTPTTL)
	if err := s.repo.SetOTP(ctx, u.ID, code, expiresAt); err != nil {
		s.logger.Error("failed to store otp", "user_id", u.ID, "error", err)
		return nil, ErrInternal.WithCause(err)
	}
	u.OTP, u.OTPExpiresAt = &code, &expiresAt

	d := s.deliverOTP(ctx, u, code)
	return &d, nil
}

// findUser loads a user by id. Malformed ids are reported as not found.
func (s *service) findUser(ctx context.Context, userID string) (*User, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, ErrNotFound.WithCause(err)
	}
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		s.logger.Error("failed to find user", "user_id", userID, "error", err)
		return nil, ErrInternal.WithCause(err)
	}
	return u, nil
}
