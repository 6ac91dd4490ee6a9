package orders

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/apperr"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/cart"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/payment"
)

type fakeStore struct {
	placed    []PlaceRequest
	cancelled int
	order     Order
	tr        Transition
	err       error
}

func (f *fakeStore) Place(_ context.Context, req PlaceRequest) (Order, error) {
	f.placed = append(f.placed, req)
	if f.err != nil {
		return Order{}, f.err
	}
	return Order{ID: "o1", UserID: req.UserID, PaymentMethod: req.PaymentMethod,
		PaymentStatus: req.PaymentStatus, TotalAmount: decimal.NewFromInt(250),
		Items: []Item{{ProductID: "p1", Quantity: 2}}}, nil
}
func (f *fakeStore) Get(context.Context, string) (Order, error) { return f.order, f.err }
func (f *fakeStore) Cancel(context.Context, string, string, string) (Transition, error) {
	f.cancelled++
	return f.tr, f.err
}
func (f *fakeStore) SetStatus(context.Context, string, Status) (Transition, error) {
	return f.tr, f.err
}
func (f *fakeStore) ListByUser(context.Context, string) ([]Order, error)  { return nil, f.err }
func (f *fakeStore) ListAll(context.Context) ([]Order, error)             { return nil, f.err }
func (f *fakeStore) Stats(context.Context) ([]OrderStat, int, int, error) { return nil, 0, 0, f.err }

type published struct {
	topic string
	key   string
	env   Envelope
}

type fakePublisher struct{ msgs []published }

func (p *fakePublisher) Publish(topic string, key, value []byte, _ ...kafkago.Header) {
	var env Envelope
	_ = json.Unmarshal(value, &env)
	p.msgs = append(p.msgs, published{topic: topic, key: string(key), env: env})
}

type fakeCarts struct{ snap cart.Snapshot }

func (c fakeCarts) Get(context.Context, string) (cart.Snapshot, error) { return c.snap, nil }

type fakeGateway struct{ amount decimal.Decimal }

func (g *fakeGateway) KeyID() string { return "rzp_test" }
func (g *fakeGateway) CreateOrder(_ context.Context, amount decimal.Decimal, receipt string) (payment.GatewayOrder, error) {
	g.amount = amount
	return payment.GatewayOrder{"id": "order_1", "receipt": receipt}, nil
}

var addr = Address{FullName: "Asha", Phone: "999", AddressLine: "1 Main St", City: "Pune", Pincode: "411001"}

func newService(store *fakeStore, pub *fakePublisher) *Service {
	svc := &Service{
		Store:    store,
		Verifier: payment.NewVerifier("secret"),
		Producer: "storefront-api",
		Now:      func() time.Time { return t0 },
	}
	if pub != nil {
		svc.Publisher = pub
	}
	return svc
}

func TestVerifyAndPlaceRejectsBadSignature(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{}
	svc := newService(store, pub)

	_, err := svc.VerifyAndPlace(context.Background(), "u1", addr, PaymentRefs{
		GatewayOrderID: "order_1", PaymentID: "pay_1", Signature: payment.Sign("wrong", "order_1", "pay_1"),
	})

	assert.ErrorIs(t, err, apperr.ErrPaymentSignature)
	assert.Empty(t, store.placed, "no order may be created")
	assert.Empty(t, pub.msgs)
}

func TestVerifyAndPlacePlacesPaidOrder(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{}
	svc := newService(store, pub)

	o, err := svc.VerifyAndPlace(context.Background(), "u1", addr, PaymentRefs{
		GatewayOrderID: "order_1", PaymentID: "pay_1", Signature: payment.Sign("secret", "order_1", "pay_1"),
	})
	require.NoError(t, err)
	assert.Equal(t, "o1", o.ID)

	require.Len(t, store.placed, 1)
	req := store.placed[0]
	assert.Equal(t, PaymentOnline, req.PaymentMethod)
	assert.Equal(t, PaymentPaid, req.PaymentStatus)
	assert.Equal(t, "pay_1", req.Refs.PaymentID)

	require.Len(t, pub.msgs, 1)
	assert.Equal(t, TopicOrderPlaced, pub.msgs[0].topic)
	assert.Equal(t, "o1", pub.msgs[0].key)
	assert.Equal(t, EventOrderPlaced, pub.msgs[0].env.EventType)
	assert.Equal(t, "o1", pub.msgs[0].env.CorrelationID)
}

func TestVerifyWithoutGatewayConfig(t *testing.T) {
	svc := &Service{Store: &fakeStore{}}
	_, err := svc.VerifyAndPlace(context.Background(), "u1", addr, PaymentRefs{})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestPlaceCODPropagatesEmptyCart(t *testing.T) {
	store := &fakeStore{err: apperr.ErrEmptyCart}
	pub := &fakePublisher{}
	_, err := newService(store, pub).PlaceCOD(context.Background(), "u1", addr)
	assert.ErrorIs(t, err, apperr.ErrEmptyCart)
	assert.Empty(t, pub.msgs)
}

func TestPlaceCODValidatesAddress(t *testing.T) {
	store := &fakeStore{}
	_, err := newService(store, nil).PlaceCOD(context.Background(), "u1", Address{})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Empty(t, store.placed)
}

func TestCancelChecksReasonBeforeStore(t *testing.T) {
	store := &fakeStore{}
	_, err := newService(store, nil).Cancel(context.Background(), "o1", "u1", "meh")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Zero(t, store.cancelled)
}

func TestCancelPublishes(t *testing.T) {
	store := &fakeStore{tr: Transition{Order: Order{ID: "o1", UserID: "u1", Status: StatusCancelled}, Changed: true, Restored: true}}
	pub := &fakePublisher{}
	o, err := newService(store, pub).Cancel(context.Background(), "o1", "u1", CancellationReasons[0])
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, o.Status)
	require.Len(t, pub.msgs, 1)
	assert.Equal(t, TopicOrderCancelled, pub.msgs[0].topic)

	var p OrderCancelledPayload
	require.NoError(t, json.Unmarshal(pub.msgs[0].env.Payload, &p))
	assert.Equal(t, "User", p.CancelledBy)
	assert.True(t, p.StockRestored)
}

func TestSetStatusUnchangedPublishesNothing(t *testing.T) {
	store := &fakeStore{tr: Transition{Order: Order{ID: "o1", Status: StatusRejected}, From: StatusRejected}}
	pub := &fakePublisher{}
	_, err := newService(store, pub).SetStatus(context.Background(), "o1", "Rejected")
	require.NoError(t, err)
	assert.Empty(t, pub.msgs)
}

func TestSetStatusUnknown(t *testing.T) {
	_, err := newService(&fakeStore{}, nil).SetStatus(context.Background(), "o1", "Teleported")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestSetStatusShippedPublishesChange(t *testing.T) {
	store := &fakeStore{tr: Transition{Order: Order{ID: "o1", Status: StatusShipped}, From: StatusPlaced, Changed: true}}
	pub := &fakePublisher{}
	_, err := newService(store, pub).SetStatus(context.Background(), "o1", "Shipped")
	require.NoError(t, err)
	require.Len(t, pub.msgs, 1)
	assert.Equal(t, TopicOrderStatusChanged, pub.msgs[0].topic)
}

func TestCreatePaymentOrder(t *testing.T) {
	gw := &fakeGateway{}
	svc := newService(&fakeStore{}, nil)
	svc.Gateway = gw
	svc.Carts = fakeCarts{snap: cart.Snapshot{Lines: []cart.Line{
		{Price: decimal.NewFromInt(100), Quantity: 2}, {Price: decimal.NewFromInt(50), Quantity: 1},
	}}}

	po, err := svc.CreatePaymentOrder(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "rzp_test", po.Key)
	assert.Equal(t, "250", po.Amount.String())
	assert.Equal(t, payment.Receipt(t0), po.Order["receipt"])

	svc.Carts = fakeCarts{}
	_, err = svc.CreatePaymentOrder(context.Background(), "u1")
	assert.ErrorIs(t, err, apperr.ErrEmptyCart)
}

func TestInvoiceOrder(t *testing.T) {
	store := &fakeStore{order: Order{ID: "o1", UserID: "u1", PaymentStatus: PaymentPending}}
	svc := newService(store, nil)

	_, err := svc.InvoiceOrder(context.Background(), "o1", "u2")
	assert.ErrorIs(t, err, apperr.ErrAuthorization)

	_, err = svc.InvoiceOrder(context.Background(), "o1", "u1")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	store.order.PaymentStatus = PaymentPaid
	_, err = svc.InvoiceOrder(context.Background(), "o1", "u1")
	assert.NoError(t, err)

	store.err = errors.New("db down")
	_, err = svc.InvoiceOrder(context.Background(), "o1", "u1")
	assert.Error(t, err)
}
