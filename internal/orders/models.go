package orders

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/apperr"
)

type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "COD"
	PaymentOnline PaymentMethod = "Online"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPaid    PaymentStatus = "Paid"
)

// Actor records who cancelled an order.
type Actor string

const (
	ActorUser  Actor = "User"
	ActorAdmin Actor = "Admin"
)

type Address struct {
	FullName    string `json:"fullName"`
	Phone       string `json:"phone"`
	AddressLine string `json:"addressLine"`
	City        string `json:"city"`
	State       string `json:"state"`
	Pincode     string `json:"pincode"`
}

func (a *Address) Normalize() error {
	for _, f := range []*string{&a.FullName, &a.Phone, &a.AddressLine, &a.City, &a.State, &a.Pincode} {
		*f = strings.TrimSpace(*f)
	}
	if a.FullName == "" || a.Phone == "" || a.AddressLine == "" || a.Pincode == "" {
		return apperr.Validation("address requires fullName, phone, addressLine and pincode")
	}
	return nil
}

// Item is an immutable order line; Price is the unit price at purchase time.
type Item struct {
	ProductID string          `json:"productId"`
	Title     string          `json:"title"`
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Order struct {
	ID             string          `json:"id"`
	UserID         string          `json:"userId"`
	Customer       *Customer       `json:"user,omitempty"`
	Items          []Item          `json:"items"`
	Address        Address         `json:"address"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	PaymentMethod  PaymentMethod   `json:"paymentMethod"`
	PaymentStatus  PaymentStatus   `json:"paymentStatus"`
	GatewayOrderID string          `json:"razorpayOrderId,omitempty"`
	PaymentID      string          `json:"razorpayPaymentId,omitempty"`
	Status         Status          `json:"status"`
	StockRestored  bool            `json:"stockRestored"`
	CancelledBy    Actor           `json:"cancelledBy,omitempty"`
	CancelReason   string          `json:"cancelReason,omitempty"`
	CancelledAt    *time.Time      `json:"cancelledAt,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// PaymentRefs are the gateway identifiers of an online payment.
type PaymentRefs struct {
	GatewayOrderID string `json:"razorpay_order_id"`
	PaymentID      string `json:"razorpay_payment_id"`
	Signature      string `json:"razorpay_signature"`
}

type PlaceRequest struct {
	UserID        string
	Address       Address
	PaymentMethod PaymentMethod
	PaymentStatus PaymentStatus
	Refs          *PaymentRefs
}
