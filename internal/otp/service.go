package otp

import (
	"context"

	"go.uber.org/zap"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/apperr"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/logging"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/metrics"
)

// Notifier delivers a code to its owner. *mailer.Chain implements it.
type Notifier interface {
	SendOTP(ctx context.Context, to string, purpose Purpose, code string) error
}

// Issued is returned to the requester. Code is only set when delivery did
// not happen, so development setups without mail still work.
type Issued struct {
	Delivered bool   `json:"delivered"`
	Code      string `json:"code,omitempty"`
}

type Service struct {
	Store    Store
	Notifier Notifier // nil means no delivery channel
	Metrics  *metrics.Metrics
}

func (s *Service) Issue(ctx context.Context, key Key) (Issued, error) {
	log := logging.FromContext(ctx).With(zap.String("purpose", string(key.Purpose)))

	code, err := s.Store.Issue(ctx, key)
	if err != nil {
		return Issued{}, err
	}
	if s.Notifier == nil {
		log.Warn("otp_delivery_unconfigured")
		s.Metrics.OTPIssue(string(key.Purpose), false)
		return Issued{Delivered: false, Code: code}, nil
	}
	if err := s.Notifier.SendOTP(ctx, key.Email, key.Purpose, code); err != nil {
		log.Warn("otp_delivery_failed", zap.Error(err))
		s.Metrics.OTPIssue(string(key.Purpose), false)
		return Issued{Delivered: false, Code: code}, nil
	}
	log.Info("otp_issued")
	s.Metrics.OTPIssue(string(key.Purpose), true)
	return Issued{Delivered: true}, nil
}

func (s *Service) Consume(ctx context.Context, key Key, code string) error {
	err := s.Store.Consume(ctx, key, code)
	s.Metrics.OTPConsume(string(key.Purpose), outcome(err))
	return err
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return apperr.KindOf(err).String()
}
