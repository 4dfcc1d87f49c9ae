package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"github.com/delordemm1/psych-api/internal/database"
)

var userColumns = []string{
	"id", "first_name", "last_name", "email", "username", "password_hash",
	"profile_picture", "auth_provider", "otp", "otp_expires_at",
	"email_send_failed", "last_email_error", "created_at", "updated_at",
}

// Create inserts a new user record into the database.
func (r *repository) Create(ctx context.Context, user *User) error {
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now

	query, args, err := r.psql.Insert("users").
		Columns(userColumns...).
		Values(
			user.ID, user.FirstName, user.LastName, user.Email, user.Username, user.PasswordHash,
			user.ProfilePicture, user.AuthProvider, user.OTP, user.OTPExpiresAt,
			user.EmailSendFailed, user.LastEmailError, user.CreatedAt, user.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateInsert.WithCause(err)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// FindByID retrieves a user by their unique ID.
// It returns ErrNotFound if no user is found.
func (r *repository) FindByID(ctx context.Context, id string) (*User, error) {
	return r.findOne(ctx, squirrel.Eq{"id": id})
}

// FindByEmail retrieves a user by their email address.
func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, squirrel.Eq{"email": email})
}

func (r *repository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	return r.exists(ctx, squirrel.Or{squirrel.Eq{"email": email}, squirrel.Eq{"username": username}})
}

func (r *repository) UsernameExists(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, squirrel.Eq{"username": username})
}

func (r *repository) SetOTP(ctx context.Context, userID, otp string, expiresAt time.Time) error {
	return r.update(ctx, userID, map[string]any{
		"otp":            otp,
		"otp_expires_at": expiresAt,
	})
}

func (r *repository) ClearOTP(ctx context.Context, userID string) error {
	return r.update(ctx, userID, map[string]any{
		"otp":            nil,
		"otp_expires_at": nil,
	})
}

func (r *repository) MarkEmailFailed(ctx context.Context, userID, reason string) error {
	return r.update(ctx, userID, map[string]any{
		"email_send_failed": true,
		"last_email_error":  reason,
	})
}

// UpdateProfile writes the editable fields and returns the stored record.
func (r *repository) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*User, error) {
	b := r.psql.Update("users").Set("updated_at", time.Now().UTC())
	if update.FirstName != nil {
		b = b.Set("first_name", *update.FirstName)
	}
	if update.LastName != nil {
		b = b.Set("last_name", *update.LastName)
	}
	if update.Username != nil {
		b = b.Set("username", *update.Username)
	}
	if update.ProfilePicture != nil {
		b = b.Set("profile_picture", *update.ProfilePicture)
	}

	query, args, err := b.Where(squirrel.Eq{"id": userID}).
		Suffix("RETURNING " + strings.Join(userColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, err
	}

	var user User
	if err := pgxscan.Get(ctx, r.db, &user, query, args...); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, ErrDetailsNotFound.WithCause(err)
		case database.IsUniqueViolation(err):
			return nil, ErrUsernameConflict.WithCause(err)
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &user, nil
}

func (r *repository) Delete(ctx context.Context, userID string) error {
	query, args, err := r.psql.Delete("users").
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return err
	}

	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) update(ctx context.Context, userID string, set map[string]any) error {
	set["updated_at"] = time.Now().UTC()
	query, args, err := r.psql.Update("users").
		SetMap(set).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return err
	}

	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) exists(ctx context.Context, condition squirrel.Sqlizer) (bool, error) {
	inner, args, err := r.psql.Select("1").From("users").Where(condition).Limit(1).ToSql()
	if err != nil {
		return false, err
	}

	var found bool
	if err := r.db.QueryRow(ctx, "SELECT EXISTS ("+inner+")", args...).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}

// findOne is a helper method to find a single user by a given condition.
func (r *repository) findOne(ctx context.Context, condition squirrel.Sqlizer) (*User, error) {
	query, args, err := r.psql.Select(userColumns...).
		From("users").
		Where(condition).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	var user User
	if err := pgxscan.Get(ctx, r.db, &user, query, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound.WithCause(err)
		}
		return nil, err
	}
	return &user, nil
}
