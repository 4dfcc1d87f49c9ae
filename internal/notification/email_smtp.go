package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mail "github.com/xhit/go-simple-mail/v2"

	"github.com/delordemm1/psych-api/internal/config"
)

// SMTPMailer delivers messages through an SMTP relay. A new connection is
// opened per message; the relay volume here is a handful of mails per request.
type SMTPMailer struct {
	server *mail.SMTPServer
	from   string
	log    *slog.Logger
}

// NewSMTPMailer builds a mailer from the SMTP section of the config.
func NewSMTPMailer(cfg config.SMTPConfig, log *slog.Logger) *SMTPMailer {
	server := mail.NewSMTPClient()
	server.Host = cfg.Host
	server.Port = cfg.Port
	server.Username = cfg.Username
	server.Password = cfg.Password
	server.Encryption = encryption(cfg.Encryption)
	server.KeepAlive = false
	server.ConnectTimeout = 10 * time.Second
	server.SendTimeout = 10 * time.Second

	return &SMTPMailer{
		server: server,
		from:   formatFrom(cfg.FromName, cfg.From),
		log:    log,
	}
}

// Send connects, sends and disconnects. ctx is only checked before dialing;
// the SMTP client enforces its own connect and send timeouts.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	email := mail.NewMSG()
	email.SetFrom(m.from).AddTo(msg.To).SetSubject(msg.Subject)
	email.SetBody(mail.TextPlain, msg.Text)
	if msg.HTML != "" {
		email.AddAlternative(mail.TextHTML, msg.HTML)
	}
	if email.Error != nil {
		return fmt.Errorf("build email: %w", email.Error)
	}

	client, err := m.server.Connect()
	if err != nil {
		return fmt.Errorf("connect to SMTP server: %w", err)
	}
	defer client.Close()

	if err := email.Send(client); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	m.log.Info("email sent via smtp", "to", msg.To)
	return nil
}

func encryption(name string) mail.Encryption {
	switch strings.ToLower(name) {
	case "ssl", "tls", "ssltls":
		return mail.EncryptionSSLTLS
	case "none":
		return mail.EncryptionNone
	default:
		return mail.EncryptionSTARTTLS
	}
}

// formatFrom renders `"Psych" <noreply@example.com>`.
func formatFrom(name, addr string) string {
	if name == "" {
		return addr
	}
	return fmt.Sprintf("%q <%s>", name, addr)
}
