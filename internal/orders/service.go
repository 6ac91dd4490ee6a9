package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/apperr"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/cart"
	kafkax "github.com/Hshshssjsjjsjsqq/vercel-backend/internal/kafka"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/logging"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/metrics"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/payment"
)

var tracer = otel.Tracer("storefront/orders")

// Store is the persistence the service drives. *Repo implements it.
type Store interface {
	Place(ctx context.Context, req PlaceRequest) (Order, error)
	Get(ctx context.Context, id string) (Order, error)
	Cancel(ctx context.Context, id, userID, reason string) (Transition, error)
	SetStatus(ctx context.Context, id string, next Status) (Transition, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	Stats(ctx context.Context) ([]OrderStat, int, int, error)
}

type CartReader interface {
	Get(ctx context.Context, userID string) (cart.Snapshot, error)
}

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	Publish(topic string, key, value []byte, headers ...kafkago.Header)
}

type Service struct {
	Store     Store
	Carts     CartReader
	Verifier  *payment.Verifier // nil when the gateway is not configured
	Gateway   payment.Gateway   // nil when the gateway is not configured
	Publisher Publisher         // nil disables events
	Metrics   *metrics.Metrics
	Producer  string
	Now       func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// PlaceCOD places a cash-on-delivery order from the user's cart.
func (s *Service) PlaceCOD(ctx context.Context, userID string, addr Address) (_ Order, err error) {
	ctx, end := startSpan(ctx, "orders.PlaceCOD", attribute.String("user.id", userID))
	defer func() { end(err) }()

	if err := addr.Normalize(); err != nil {
		return Order{}, err
	}
	return s.place(ctx, PlaceRequest{
		UserID:        userID,
		Address:       addr,
		PaymentMethod: PaymentCOD,
		PaymentStatus: PaymentPending,
	})
}

// PaymentOrder is what a client needs to open the gateway checkout.
type PaymentOrder struct {
	Key    string               `json:"key"`
	Order  payment.GatewayOrder `json:"order"`
	Amount decimal.Decimal      `json:"amount"`
}

// CreatePaymentOrder registers the current cart total with the gateway.
// Nothing is persisted; the order is only created after VerifyAndPlace.
func (s *Service) CreatePaymentOrder(ctx context.Context, userID string) (_ PaymentOrder, err error) {
	ctx, end := startSpan(ctx, "orders.CreatePaymentOrder", attribute.String("user.id", userID))
	defer func() { end(err) }()

	if s.Gateway == nil {
		return PaymentOrder{}, apperr.Validation("payment gateway is not configured")
	}
	snap, err := s.Carts.Get(ctx, userID)
	if err != nil {
		return PaymentOrder{}, err
	}
	if snap.Empty() {
		return PaymentOrder{}, apperr.ErrEmptyCart
	}
	total := snap.Total()
	gwOrder, err := s.Gateway.CreateOrder(ctx, total, payment.Receipt(s.now()))
	if err != nil {
		logging.FromContext(ctx).Error("gateway_order_failed", zap.String("user_id", userID), zap.Error(err))
		return PaymentOrder{}, err
	}
	return PaymentOrder{Key: s.Gateway.KeyID(), Order: gwOrder, Amount: total}, nil
}

// VerifyAndPlace checks the gateway signature and only then places a paid
// online order. A bad signature creates nothing.
func (s *Service) VerifyAndPlace(ctx context.Context, userID string, addr Address, refs PaymentRefs) (_ Order, err error) {
	ctx, end := startSpan(ctx, "orders.VerifyAndPlace",
		attribute.String("user.id", userID),
		attribute.String("payment.gateway_order_id", refs.GatewayOrderID))
	defer func() { end(err) }()

	if s.Verifier == nil {
		return Order{}, apperr.Validation("payment gateway is not configured")
	}
	if err := s.Verifier.Verify(refs.GatewayOrderID, refs.PaymentID, refs.Signature); err != nil {
		logging.FromContext(ctx).Warn("payment_signature_invalid",
			zap.String("user_id", userID), zap.String("gateway_order_id", refs.GatewayOrderID))
		return Order{}, err
	}
	if err := addr.Normalize(); err != nil {
		return Order{}, err
	}
	return s.place(ctx, PlaceRequest{
		UserID:        userID,
		Address:       addr,
		PaymentMethod: PaymentOnline,
		PaymentStatus: PaymentPaid,
		Refs:          &refs,
	})
}

func (s *Service) place(ctx context.Context, req PlaceRequest) (Order, error) {
	o, err := s.Store.Place(ctx, req)
	if err != nil {
		return Order{}, err
	}
	logging.FromContext(ctx).Info("order_placed",
		zap.String("order_id", o.ID),
		zap.String("user_id", o.UserID),
		zap.String("payment_method", string(o.PaymentMethod)),
		zap.String("total", o.TotalAmount.StringFixed(2)),
		zap.Int("items", len(o.Items)))
	s.Metrics.OrderPlaced(string(o.PaymentMethod))
	s.publish(ctx, TopicOrderPlaced, EventOrderPlaced, o.ID, placedPayload(o))
	return o, nil
}

func (s *Service) Mine(ctx context.Context, userID string) ([]Order, error) {
	return s.Store.ListByUser(ctx, userID)
}

// Cancel lets the owner cancel an order that has not shipped yet.
func (s *Service) Cancel(ctx context.Context, orderID, userID, reason string) (_ Order, err error) {
	ctx, end := startSpan(ctx, "orders.Cancel", attribute.String("order.id", orderID))
	defer func() { end(err) }()

	if !IsCancellationReason(reason) {
		return Order{}, apperr.Validation("Please select a valid cancellation reason")
	}
	tr, err := s.Store.Cancel(ctx, orderID, userID, reason)
	if err != nil {
		return Order{}, err
	}
	logging.FromContext(ctx).Info("order_cancelled",
		zap.String("order_id", orderID),
		zap.String("by", string(ActorUser)),
		zap.Bool("stock_restored", tr.Restored))
	s.publish(ctx, TopicOrderCancelled, EventOrderCancelled, orderID, OrderCancelledPayload{
		OrderID:       orderID,
		UserID:        tr.Order.UserID,
		CancelledBy:   string(ActorUser),
		Reason:        reason,
		StockRestored: tr.Restored,
	})
	return tr.Order, nil
}

// SetStatus is the admin status update. Re-setting the current status is a
// no-op and publishes nothing.
func (s *Service) SetStatus(ctx context.Context, orderID, status string) (_ Order, err error) {
	ctx, end := startSpan(ctx, "orders.SetStatus",
		attribute.String("order.id", orderID), attribute.String("order.status", status))
	defer func() { end(err) }()

	next, err := ParseStatus(status)
	if err != nil {
		return Order{}, err
	}
	tr, err := s.Store.SetStatus(ctx, orderID, next)
	if err != nil {
		return Order{}, err
	}
	logging.FromContext(ctx).Info("order_status_set",
		zap.String("order_id", orderID),
		zap.String("from", string(tr.From)),
		zap.String("to", string(next)),
		zap.Bool("changed", tr.Changed),
		zap.Bool("stock_restored", tr.Restored))
	if !tr.Changed {
		return tr.Order, nil
	}
	if next == StatusCancelled {
		s.publish(ctx, TopicOrderCancelled, EventOrderCancelled, orderID, OrderCancelledPayload{
			OrderID:       orderID,
			UserID:        tr.Order.UserID,
			CancelledBy:   string(ActorAdmin),
			StockRestored: tr.Restored,
		})
	} else {
		s.publish(ctx, TopicOrderStatusChanged, EventOrderStatusChanged, orderID, OrderStatusChangedPayload{
			OrderID:       orderID,
			UserID:        tr.Order.UserID,
			From:          string(tr.From),
			To:            string(next),
			StockRestored: tr.Restored,
		})
	}
	return tr.Order, nil
}

// AdminList returns every order, filtered and sorted by q.
func (s *Service) AdminList(ctx context.Context, q AdminQuery) ([]Order, error) {
	list, err := s.Store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return q.Apply(list), nil
}

func (s *Service) Insights(ctx context.Context) (Insights, error) {
	stats, users, products, err := s.Store.Stats(ctx)
	if err != nil {
		return Insights{}, err
	}
	return ComputeInsights(s.now().UTC(), stats, users, products), nil
}

// InvoiceOrder returns the order for invoicing: owner only, paid only.
func (s *Service) InvoiceOrder(ctx context.Context, orderID, userID string) (Order, error) {
	o, err := s.Store.Get(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if o.UserID != userID {
		return Order{}, apperr.Authorization("You can only download your own invoice")
	}
	if o.PaymentStatus != PaymentPaid {
		return Order{}, apperr.Validation("Invoice is available only for paid orders")
	}
	return o, nil
}

func (s *Service) publish(ctx context.Context, topic, eventType, orderID string, payload any) {
	if s.Publisher == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    s.now().UTC(),
		Producer:      s.Producer,
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		ev.TraceID = sc.TraceID().String()
	}
	s.Publisher.Publish(topic, PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
	s.Metrics.EventPublished(eventType)
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, apperr.KindOf(err).String())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}
