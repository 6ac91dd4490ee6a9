// Package cart stores per-user carts and resolves them into priced
// snapshots for order placement.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/inventory"
)

// Line is one cart entry joined with the product's current state.
type Line struct {
	ProductID string          `json:"productId"`
	Title     string          `json:"title"`
	SKU       string          `json:"sku"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"` // live price at resolve time
	Stock     int             `json:"stock"`
	Quantity  int             `json:"quantity"`
}

func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Snapshot struct {
	UserID string `json:"userId"`
	Lines  []Line `json:"items"`
}

func (s Snapshot) Empty() bool { return len(s.Lines) == 0 }

// Total is the sum of price times quantity over all lines.
func (s Snapshot) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// StockLines maps the snapshot onto ledger lines.
func (s Snapshot) StockLines() []inventory.Line {
	out := make([]inventory.Line, 0, len(s.Lines))
	for _, l := range s.Lines {
		out = append(out, inventory.Line{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return out
}
