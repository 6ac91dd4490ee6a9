// Package mailer delivers plain-text transactional mail over SMTP or the
// Resend HTTP API.
package mailer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/config"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/otp"
)

var ErrNotConfigured = errors.New("mailer: no delivery channel configured")

type Message struct {
	To      string
	Subject string
	Text    string
}

type Sender interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Chain tries each sender in order and stops at the first success.
type Chain struct {
	senders []Sender
	log     *zap.Logger
}

func NewChain(log *zap.Logger, senders ...Sender) *Chain {
	c := &Chain{log: log}
	for _, s := range senders {
		if s != nil {
			c.senders = append(c.senders, s)
		}
	}
	return c
}

// FromConfig builds the chain the original deployment used: Gmail SMTP when
// credentials are present, then Resend.
func FromConfig(cfg config.MailConfig, log *zap.Logger) *Chain {
	var senders []Sender
	if s := NewSMTP(cfg); s != nil {
		senders = append(senders, s)
	}
	if r := NewResend(cfg.ResendAPIKey, cfg.ResendFrom); r != nil {
		senders = append(senders, r)
	}
	return NewChain(log, senders...)
}

func (c *Chain) Configured() bool { return c != nil && len(c.senders) > 0 }

func (c *Chain) Send(ctx context.Context, msg Message) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	var errs []error
	for _, s := range c.senders {
		err := s.Send(ctx, msg)
		if err == nil {
			return nil
		}
		c.log.Warn("mail_send_failed", zap.String("sender", s.Name()), zap.Error(err))
		errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
	}
	return errors.Join(errs...)
}

var otpSubjects = map[otp.Purpose]struct{ subject, label string }{
	otp.PurposeSignup:     {"Signup Email Verification OTP", "signup verification"},
	otp.PurposeAdminReset: {"Admin Password Reset OTP", "admin reset"},
	otp.PurposeUserReset:  {"User Password Reset OTP", "user reset"},
}

// SendOTP makes *Chain an otp.Notifier.
func (c *Chain) SendOTP(ctx context.Context, to string, purpose otp.Purpose, code string) error {
	t, ok := otpSubjects[purpose]
	if !ok {
		return fmt.Errorf("mailer: unknown otp purpose %q", purpose)
	}
	return c.Send(ctx, Message{
		To:      to,
		Subject: t.subject,
		Text:    fmt.Sprintf("Your %s OTP is %s. It is valid for 10 minutes.", t.label, code),
	})
}
