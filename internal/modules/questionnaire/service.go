package questionnaire

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// Service holds questionnaire rules. The user module uses it for profile
// reads, replacement and account deletion.
type Service interface {
	Submit(ctx context.Context, userID string, answers []Answer) (*Questionnaire, error)
	GetByUser(ctx context.Context, userID string) (*Questionnaire, error)
	// Replace overwrites the user's answers wholesale, creating the record
	// if none exists.
	Replace(ctx context.Context, userID string, answers []Answer) (*Questionnaire, error)
	DeleteByUser(ctx context.Context, userID string) error
}

type service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) Service {
	return &service{repo: repo, logger: logger}
}

// Submit stores the first questionnaire of a user.
func (s *service) Submit(ctx context.Context, userID string, answers []Answer) (*Questionnaire, error) {
	if strings.TrimSpace(userID) == "" || answers == nil {
		return nil, ErrFieldsRequired
	}
	if err := ValidateAnswers(answers); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(userID); err != nil {
		return nil, ErrUserNotFound.WithCause(err)
	}

	q, err := New(userID, answers)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, q); err != nil {
		if errors.Is(err, ErrAlreadySubmitted) || errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		s.logger.Error("failed to create questionnaire", "user_id", userID, "error", err)
		return nil, err
	}

	s.logger.Info("questionnaire submitted", "user_id", userID, "questionnaire_id", q.ID)
	return q, nil
}

func (s *service) GetByUser(ctx context.Context, userID string) (*Questionnaire, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, ErrNotFound.WithCause(err)
	}
	return s.repo.FindByUser(ctx, userID)
}

func (s *service) Replace(ctx context.Context, userID string, answers []Answer) (*Questionnaire, error) {
	if err := ValidateAnswers(answers); err != nil {
		return nil, err
	}
	q, err := New(userID, answers)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *service) DeleteByUser(ctx context.Context, userID string) error {
	return s.repo.DeleteByUser(ctx, userID)
}

// New builds an unsaved questionnaire with a fresh id.
func New(userID string, answers []Answer) (*Questionnaire, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	return &Questionnaire{ID: id.String(), UserID: userID, Answers: normalize(answers)}, nil
}

// ValidateAnswers enforces exactly AnswerCount complete answers.
func ValidateAnswers(answers []Answer) error {
	if len(answers) != AnswerCount {
		return ErrAnswerCount
	}
	for _, a := range answers {
		if strings.TrimSpace(a.Question) == "" || strings.TrimSpace(a.SelectedAnswer) == "" {
			return ErrAnswerIncomplete
		}
	}
	return nil
}

func normalize(answers []Answer) []Answer {
	out := make([]Answer, len(answers))
	for i, a := range answers {
		out[i] = Answer{Question: strings.TrimSpace(a.Question), SelectedAnswer: strings.TrimSpace(a.SelectedAnswer)}
	}
	return out
}
