package notification

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/delordemm1/psych-api/internal/notification/templates"
)

// Message is a single outgoing e-mail.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer is the mail transport. Send blocks until the relay accepts or
// rejects the message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Service renders scenario templates and hands them to the transport.
type Service struct {
	log    *slog.Logger
	mailer Mailer
	engine *templates.Engine
}

func NewService(log *slog.Logger, mailer Mailer, engine *templates.Engine) *Service {
	return &Service{log: log, mailer: mailer, engine: engine}
}

// SendTemplate renders the scenario identified by h with data and sends it
// to a single recipient. The transport error is returned unchanged so
// callers can decide between retrying and giving up.
func (s *Service) SendTemplate(ctx context.Context, h templates.IHandle, to string, data any) error {
	if got := reflect.TypeOf(data); got != h.DataType() {
		return fmt.Errorf("template %s expects %s, got %v", h.ID(), h.DataType(), got)
	}

	r, err := s.engine.RenderAny(ctx, h.ID(), data)
	if err != nil {
		return fmt.Errorf("render %s: %w", h.ID(), err)
	}

	s.log.Debug("dispatching email", "template", h.ID(), "recipient", to)
	return s.mailer.Send(ctx, Message{
		To:      to,
		Subject: r.Subject,
		Text:    r.EmailText,
		HTML:    r.EmailHTML,
	})
}

// Send is the typed form of SendTemplate.
func Send[T any](ctx context.Context, s *Service, h templates.Handle[T], to string, data T) error {
	return s.SendTemplate(ctx, h, to, data)
}
