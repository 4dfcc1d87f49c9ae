package user

import (
	"context"
	"errors"
	"strings"

	"github.com/delordemm1/psych-api/internal/modules/questionnaire"
	"github.com/delordemm1/psych-api/internal/storage"
)

// UpdateProfileInput carries a profile edit together with the replacement
// questionnaire. Nil profile fields are left unchanged.
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	Username  *string
	// ProfilePicture is either an image data URI, uploaded before saving,
	// or a URL stored as given.
	ProfilePicture *string
	Answers        []questionnaire.Answer
}

// GetProfile retrieves a single user's profile by their ID.
func (s *service) GetProfile(ctx context.Context, userID string) (*User, error) {
	return s.findUser(ctx, userID)
}

// GetDetails returns the user and their questionnaire. Both must exist.
func (s *service) GetDetails(ctx context.Context, userID string) (*User, *questionnaire.Questionnaire, error) {
	u, err := s.findUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, ErrDetailsNotFound
		}
		return nil, nil, err
	}

	q, err := s.questionnaires.GetByUser(ctx, u.ID)
	if err != nil {
		if errors.Is(err, questionnaire.ErrNotFound) {
			return nil, nil, ErrDetailsNotFound
		}
		s.logger.Error("failed to load questionnaire", "user_id", u.ID, "error", err)
		return nil, nil, ErrInternal.WithCause(err)
	}
	return u, q, nil
}

// UpdateProfile applies the profile edit and replaces the questionnaire in
// one transaction. A new picture is uploaded first; a failed upload keeps
// the current one.
func (s *service) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*User, *questionnaire.Questionnaire, error) {
	if in.Answers == nil {
		return nil, nil, ErrProfileRequired
	}
	if err := questionnaire.ValidateAnswers(in.Answers); err != nil {
		return nil, nil, err
	}

	first, err := nonBlank(in.FirstName)
	if err != nil {
		return nil, nil, err
	}
	last, err := nonBlank(in.LastName)
	if err != nil {
		return nil, nil, err
	}
	update := ProfileUpdate{FirstName: first, LastName: last}
	if in.Username != nil {
		name := normalizeUsername(*in.Username)
		if !validUsername(name) {
			return nil, nil, ErrInvalidUsername
		}
		update.Username = &name
	}

	u, err := s.findUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, ErrDetailsNotFound
		}
		return nil, nil, err
	}

	if in.ProfilePicture != nil {
		update.ProfilePicture = s.resolvePicture(ctx, u.ID, *in.ProfilePicture)
	}

	var (
		updated *User
		ques    *questionnaire.Questionnaire
	)
	err = s.tx.WithinTx(ctx, func(users Repository, questionnaires questionnaire.Service) error {
		var err error
		if updated, err = users.UpdateProfile(ctx, u.ID, update); err != nil {
			return err
		}
		ques, err = questionnaires.Replace(ctx, u.ID, in.Answers)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrUsernameConflict) || errors.Is(err, ErrDetailsNotFound) {
			return nil, nil, err
		}
		s.logger.Error("failed to update profile", "user_id", u.ID, "error", err)
		return nil, nil, ErrInternal.WithCause(err)
	}

	s.logger.Info("profile updated", "user_id", u.ID)
	return updated, ques, nil
}

func nonBlank(p *string) (*string, error) {
	if p == nil {
		return nil, nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil, ErrMissingFields
	}
	return &v, nil
}

// resolvePicture returns the value to store for a submitted picture, or nil
// to keep the current one.
func (s *service) resolvePicture(ctx context.Context, userID, picture string) *string {
	picture = strings.TrimSpace(picture)
	if picture == "" {
		return nil
	}
	if !storage.IsDataURI(picture) {
		return &picture
	}

	data, mime, err := storage.DecodeDataURI(picture)
	if err != nil {
		s.logger.Warn("ignoring malformed profile picture", "user_id", userID, "error", err)
		return nil
	}
	url := s.uploadPicture(ctx, storage.ProfileKey(userID), &ImageUpload{Data: data, ContentType: mime})
	if url == "" {
		return nil
	}
	return &url
}

// DeleteAccount removes the caller's own account. The questionnaire is
// deleted first, in the same transaction.
func (s *service) DeleteAccount(ctx context.Context, callerID, targetID string) error {
	target, err := s.findUser(ctx, targetID)
	if err != nil {
		return err
	}
	if callerID != target.ID {
		return ErrForbiddenDelete
	}

	err = s.tx.WithinTx(ctx, func(users Repository, questionnaires questionnaire.Service) error {
		if err := questionnaires.DeleteByUser(ctx, target.ID); err != nil {
			return err
		}
		return users.Delete(ctx, target.ID)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		s.logger.Error("failed to delete account", "user_id", target.ID, "error", err)
		return ErrInternal.WithCause(err)
	}

	s.logger.Info("account deleted", "user_id", target.ID)
	return nil
}
