package user

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/delordemm1/psych-api/internal/database"
)

// Repository defines the interface for database operations for the user module.
type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	// ExistsByEmailOrUsername is the registration pre-check. The unique
	// indexes stay authoritative.
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)

	// SetOTP and ClearOTP always write the code and its expiry together.
	SetOTP(ctx context.Context, userID, otp string, expiresAt time.Time) error
	ClearOTP(ctx context.Context, userID string) error
	MarkEmailFailed(ctx context.Context, userID, reason string) error

	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*User, error)
	Delete(ctx context.Context, userID string) error
}

// ProfileUpdate lists the user-editable, non-auth fields. Nil pointers are
// left unchanged.
type ProfileUpdate struct {
	FirstName      *string
	LastName       *string
	Username       *string
	ProfilePicture *string
}

// StateStore keeps OAuth states between the redirect and the callback.
type StateStore interface {
	Save(ctx context.Context, state *OAuthState) error
	// Take returns the state and removes it, so a state is usable once.
	Take(ctx context.Context, state string) (*OAuthState, error)
}

// repository implements the Repository interface using pgx and squirrel.
type repository struct {
	db   database.DBTX
	psql squirrel.StatementBuilderType
}

// NewRepository creates a new user repository with the given database connection.
func NewRepository(db database.DBTX) Repository {
	return &repository{
		db:   db,
		psql: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}
