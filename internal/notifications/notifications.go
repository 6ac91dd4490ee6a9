// Package notifications emails customers when their orders change state.
// It runs in cmd/notifier as a Kafka consumer handler.
package notifications

import (
	"context"
	"errors"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/apperr"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/auth"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/invoice"
	kafkax "github.com/Hshshssjsjjsjsqq/vercel-backend/internal/kafka"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/logging"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/mailer"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/orders"
)

type Users interface {
	UserByID(ctx context.Context, id string) (auth.User, error)
}

type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// Dedup remembers which events were handled. Forget releases a claim so a
// failed delivery can be retried.
type Dedup interface {
	Claim(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

type Service struct {
	Users  Users
	Mail   Mailer
	Dedup  Dedup
	Logger *zap.Logger
}

// HandleOrderEvent is a kafka.Handler. Unknown event types and orders of
// deleted users are acknowledged without mail. Undecodable events fail
// permanently; store and mail failures are returned for retry.
func (s *Service) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := kafkax.UnmarshalEnvelope(m.Value, &env); err != nil {
		return kafkax.Permanent(err)
	}
	log := s.Logger.With(
		zap.String("event_id", env.EventID),
		zap.String("event_type", env.EventType),
		zap.String("order_id", env.CorrelationID),
		zap.String("trace_id", env.TraceID))
	ctx = logging.WithLogger(ctx, log)

	userID, msg, ok, err := compose(env)
	if err != nil {
		return kafkax.Permanent(err)
	}
	if !ok {
		return nil
	}

	first, err := s.Dedup.Claim(ctx, env.EventID)
	if err != nil {
		return fmt.Errorf("claim event %s: %w", env.EventID, err)
	}
	if !first {
		log.Debug("notification_duplicate")
		return nil
	}

	u, err := s.Users.UserByID(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		log.Warn("notification_user_missing", zap.String("user_id", userID))
		return nil
	}
	if err == nil {
		msg.To = u.Email
		msg.Text = fmt.Sprintf("Hi %s,\n\n%s\n\nThank you for shopping with us.", u.Name, msg.Text)
		err = s.Mail.Send(ctx, msg)
	}
	if err != nil {
		if ferr := s.Dedup.Forget(ctx, env.EventID); ferr != nil {
			log.Warn("notification_forget_failed", zap.Error(ferr))
		}
		return fmt.Errorf("notify %s: %w", env.EventID, err)
	}
	log.Info("notification_sent", zap.String("user_id", userID))
	return nil
}

// compose builds the subject and body for an event. ok is false for events
// that do not warrant a mail.
func compose(env orders.Envelope) (userID string, msg mailer.Message, ok bool, err error) {
	switch env.EventType {
	case orders.EventOrderPlaced:
		p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
		if err != nil {
			return "", msg, false, err
		}
		ref := invoice.Number(p.OrderID)
		msg.Subject = "Order " + ref + " placed"
		msg.Text = fmt.Sprintf("We received your order %s (%d item(s), total Rs %s, %s).",
			ref, len(p.Items), p.TotalAmount, p.PaymentMethod)
		return p.UserID, msg, true, nil

	case orders.EventOrderCancelled:
		p, err := kafkax.UnwrapPayload[orders.OrderCancelledPayload](env.Payload)
		if err != nil {
			return "", msg, false, err
		}
		ref := invoice.Number(p.OrderID)
		msg.Subject = "Order " + ref + " cancelled"
		msg.Text = fmt.Sprintf("Your order %s was cancelled.", ref)
		if p.CancelledBy == string(orders.ActorAdmin) {
			msg.Text = fmt.Sprintf("Your order %s was cancelled by the store.", ref)
		}
		if p.Reason != "" {
			msg.Text += " Reason: " + p.Reason + "."
		}
		return p.UserID, msg, true, nil

	case orders.EventOrderStatusChanged:
		p, err := kafkax.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
		if err != nil {
			return "", msg, false, err
		}
		ref := invoice.Number(p.OrderID)
		msg.Subject = "Order " + ref + " " + p.To
		msg.Text = fmt.Sprintf("Your order %s is now %s.", ref, p.To)
		return p.UserID, msg, true, nil
	}
	return "", msg, false, nil
}
