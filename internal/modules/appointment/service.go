// Package appointment sends booking confirmations to the student and the
// psychiatrist.
package appointment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/delordemm1/psych-api/internal/metrics"
	"github.com/delordemm1/psych-api/internal/modules/questionnaire"
	"github.com/delordemm1/psych-api/internal/modules/user"
	"github.com/delordemm1/psych-api/internal/notification"
	"github.com/delordemm1/psych-api/internal/notification/templates"
)

// Doctor is the psychiatrist chosen by the student.
type Doctor struct {
	Name           string `json:"name,omitempty"`
	Email          string `json:"email,omitempty"`
	Specialization string `json:"specialization,omitempty"`
	Fee            any    `json:"fee,omitempty"`
}

// Booking is a confirmed slot with a doctor.
type Booking struct {
	Doctor *Doctor `json:"doctor,omitempty"`
	Date   string  `json:"selectedDate,omitempty"`
	Time   string  `json:"selectedTime,omitempty"`
}

// Users loads the booking student.
type Users interface {
	GetProfile(ctx context.Context, userID string) (*user.User, error)
}

// Questionnaires loads the student's onboarding answers.
type Questionnaires interface {
	GetByUser(ctx context.Context, userID string) (*questionnaire.Questionnaire, error)
}

type Service interface {
	Confirm(ctx context.Context, userID string, b Booking) error
}

type service struct {
	users          Users
	questionnaires Questionnaires
	notifier       *notification.Service
	logger         *slog.Logger
}

func NewService(users Users, questionnaires Questionnaires, notifier *notification.Service, logger *slog.Logger) Service {
	return &service{users: users, questionnaires: questionnaires, notifier: notifier, logger: logger}
}

// Confirm e-mails the student and then the psychiatrist. Both sends are
// attempted; a student failure is reported first.
func (s *service) Confirm(ctx context.Context, userID string, b Booking) error {
	if userID == "" {
		return ErrNotLoggedIn
	}
	if b.Doctor == nil || strings.TrimSpace(b.Doctor.Name) == "" || strings.TrimSpace(b.Doctor.Email) == "" ||
		strings.TrimSpace(b.Date) == "" || strings.TrimSpace(b.Time) == "" {
		return ErrFieldsRequired
	}

	student, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	q, err := s.questionnaires.GetByUser(ctx, student.ID)
	if err != nil {
		if errors.Is(err, questionnaire.ErrNotFound) {
			return ErrQuestionnaireNotFound
		}
		s.logger.Error("failed to load questionnaire", "user_id", student.ID, "error", err)
		return err
	}

	studentErr := notification.Send(ctx, s.notifier, templates.StudentAppointment, student.Email, templates.StudentAppointmentData{
		DoctorName:     b.Doctor.Name,
		Specialization: b.Doctor.Specialization,
		Date:           b.Date,
		Time:           b.Time,
		Fee:            formatFee(b.Doctor.Fee),
	})
	record("student", studentErr)

	answers := make([]templates.Answer, len(q.Answers))
	for i, a := range q.Answers {
		answers[i] = templates.Answer{Question: a.Question, SelectedAnswer: a.SelectedAnswer}
	}
	psychErr := notification.Send(ctx, s.notifier, templates.PsychiatristAppointment, b.Doctor.Email, templates.PsychiatristAppointmentData{
		StudentName: student.FullName(),
		Date:        b.Date,
		Time:        b.Time,
		Answers:     answers,
	})
	record("psychiatrist", psychErr)

	if studentErr != nil {
		s.logger.Error("appointment email to student failed", "user_id", student.ID, "error", studentErr)
		return ErrStudentEmail.WithCause(studentErr)
	}
	if psychErr != nil {
		s.logger.Error("appointment email to psychiatrist failed", "user_id", student.ID, "error", psychErr)
		return ErrPsychiatristEmail.WithCause(psychErr)
	}

	s.logger.Info("appointment confirmed", "user_id", student.ID, "date", b.Date, "time", b.Time)
	return nil
}

func record(recipient string, err error) {
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultFailure
	}
	metrics.AppointmentEmailsTotal.WithLabelValues(recipient, result).Inc()
}

// formatFee renders a fee sent either as a JSON number or a string.
func formatFee(fee any) string {
	switch v := fee.(type) {
	case nil:
		return ""
	case float64:
		return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
	default:
		return fmt.Sprint(v)
	}
}
