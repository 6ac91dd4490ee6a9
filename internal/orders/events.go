package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderPlaced        = "OrderPlaced"
	EventOrderCancelled     = "OrderCancelled"
	EventOrderStatusChanged = "OrderStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type ItemQty struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

type OrderPlacedPayload struct {
	OrderID       string    `json:"order_id"`
	UserID        string    `json:"user_id"`
	Items         []ItemQty `json:"items"`
	TotalAmount   string    `json:"total_amount"`
	PaymentMethod string    `json:"payment_method"`
	PaymentStatus string    `json:"payment_status"`
}

type OrderCancelledPayload struct {
	OrderID       string `json:"order_id"`
	UserID        string `json:"user_id"`
	CancelledBy   string `json:"cancelled_by"`
	Reason        string `json:"reason,omitempty"`
	StockRestored bool   `json:"stock_restored"`
}

type OrderStatusChangedPayload struct {
	OrderID       string `json:"order_id"`
	UserID        string `json:"user_id"`
	From          string `json:"from"`
	To            string `json:"to"`
	StockRestored bool   `json:"stock_restored"`
}

func placedPayload(o Order) OrderPlacedPayload {
	items := make([]ItemQty, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, ItemQty{ProductID: it.ProductID, Qty: it.Quantity})
	}
	return OrderPlacedPayload{
		OrderID:       o.ID,
		UserID:        o.UserID,
		Items:         items,
		TotalAmount:   o.TotalAmount.StringFixed(2),
		PaymentMethod: string(o.PaymentMethod),
		PaymentStatus: string(o.PaymentStatus),
	}
}
