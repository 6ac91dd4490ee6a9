package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/config"
)

type SMTP struct {
	host string
	port int
	user string
	pass string
}

// NewSMTP returns nil when no credentials are configured.
func NewSMTP(cfg config.MailConfig) *SMTP {
	if cfg.User == "" || cfg.Password == "" || cfg.SMTPHost == "" {
		return nil
	}
	return &SMTP{host: cfg.SMTPHost, port: cfg.SMTPPort, user: cfg.User, pass: cfg.Password}
}

func (s *SMTP) Name() string { return "smtp" }

func (s *SMTP) message(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(s.user); err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	return m, nil
}

func (s *SMTP) Send(ctx context.Context, msg Message) error {
	m, err := s.message(msg)
	if err != nil {
		return err
	}
	c, err := mail.NewClient(s.host,
		mail.WithPort(s.port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.user),
		mail.WithPassword(s.pass),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
