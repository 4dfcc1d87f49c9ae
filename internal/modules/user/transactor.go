package user

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/delordemm1/psych-api/internal/database"
	"github.com/delordemm1/psych-api/internal/modules/questionnaire"
)

// Transactor runs fn with a user repository and a questionnaire service
// that share one database transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(users Repository, questionnaires questionnaire.Service) error) error
}

type pgTransactor struct {
	db     database.DBTX
	logger *slog.Logger
}

func NewTransactor(db database.DBTX, logger *slog.Logger) Transactor {
	return &pgTransactor{db: db, logger: logger}
}

func (t *pgTransactor) WithinTx(ctx context.Context, fn func(Repository, questionnaire.Service) error) error {
	return database.WithTx(ctx, t.db, func(tx pgx.Tx) error {
		return fn(NewRepository(tx), questionnaire.NewService(questionnaire.NewRepository(tx), t.logger))
	})
}
