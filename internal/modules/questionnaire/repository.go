package questionnaire

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

// Repository persists questionnaires. user_id is unique, so a user has at
// most one record.
type Repository interface {
	Create(ctx context.Context, q *Questionnaire) error
	FindByUser(ctx context.Context, userID string) (*Questionnaire, error)
	// Upsert replaces the answers of the user's record, creating it if needed.
	Upsert(ctx context.Context, q *Questionnaire) error
	DeleteByUser(ctx context.Context, userID string) error
}

type repository struct {
	db   database.DBTX
	psql squirrel.StatementBuilderType
}

func NewRepository(db database.DBTX) Repository {
	return &repository{
		db:   db,
		psql: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var columns = []string{"id", "user_id", "answers", "created_at", "updated_at"}

func (r *repository) Create(ctx context.Context, q *Questionnaire) error {
	now := time.Now().UTC()
	q.CreatedAt, q.UpdatedAt = now, now

	query, args, err := r.psql.Insert("questionnaires").
		Columns(columns...).
		Values(q.ID, q.UserID, q.Answers, q.CreatedAt, q.UpdatedAt).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		switch {
		case database.IsUniqueViolation(err):
			return ErrAlreadySubmitted.WithCause(err)
		case database.IsForeignKeyViolation(err):
			return ErrUserNotFound.WithCause(err)
		}
		return fmt.Errorf("insert questionnaire: %w", err)
	}
	return nil
}

func (r *repository) FindByUser(ctx context.Context, userID string) (*Questionnaire, error) {
	query, args, err := r.psql.Select(columns...).
		From("questionnaires").
		Where(squirrel.Eq{"user_id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	var q Questionnaire
	if err := pgxscan.Get(ctx, r.db, &q, query, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound.WithCause(err)
		}
		return nil, fmt.Errorf("find questionnaire: %w", err)
	}
	return &q, nil
}

func (r *repository) Upsert(ctx context.Context, q *Questionnaire) error {
	now := time.Now().UTC()
	query, args, err := r.psql.Insert("questionnaires").
		Columns(columns...).
		Values(q.ID, q.UserID, q.Answers, now, now).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET answers = EXCLUDED.answers, updated_at = EXCLUDED.updated_at").
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return err
	}

	if err := pgxscan.Get(ctx, r.db, q, query, args...); err != nil {
		if database.IsForeignKeyViolation(err) {
			return ErrUserNotFound.WithCause(err)
		}
		return fmt.Errorf("upsert questionnaire: %w", err)
	}
	return nil
}

func (r *repository) DeleteByUser(ctx context.Context, userID string) error {
	query, args, err := r.psql.Delete("questionnaires").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return err
	}
	// Zero rows is fine: not every user finished onboarding.
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("delete questionnaire: %w", err)
	}
	return nil
}
