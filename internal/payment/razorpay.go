package payment

import (
	"context"
	"fmt"
	"time"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/shopspring/decimal"
)

const currencyINR = "INR"

// GatewayOrder is the gateway's order object, passed through to clients.
type GatewayOrder map[string]any

type Gateway interface {
	KeyID() string
	CreateOrder(ctx context.Context, amount decimal.Decimal, receipt string) (GatewayOrder, error)
}

type Razorpay struct {
	keyID  string
	client *razorpay.Client
}

func NewRazorpay(keyID, keySecret string) *Razorpay {
	return &Razorpay{keyID: keyID, client: razorpay.NewClient(keyID, keySecret)}
}

func (r *Razorpay) KeyID() string { return r.keyID }

// CreateOrder registers an INR order for amount (rupees) with the gateway.
// The client library has no context support; ctx only bounds the wait.
func (r *Razorpay) CreateOrder(ctx context.Context, amount decimal.Decimal, receipt string) (GatewayOrder, error) {
	data := map[string]interface{}{
		"amount":   ToPaise(amount),
		"currency": currencyINR,
		"receipt":  receipt,
	}

	type result struct {
		body map[string]interface{}
		err  error
	}
	done := make(chan result, 1)
	go func() {
		body, err := r.client.Order.Create(data, nil)
		done <- result{body, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("razorpay create order: %w", res.err)
		}
		return GatewayOrder(res.body), nil
	}
}

// ToPaise converts rupees to the integer minor unit, rounding half away from zero.
func ToPaise(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// Receipt builds the receipt reference sent with a gateway order.
func Receipt(now time.Time) string {
	return fmt.Sprintf("receipt_%d", now.UnixMilli())
}
