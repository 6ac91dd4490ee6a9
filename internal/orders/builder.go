package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/cart"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/inventory"
)

// BuildItems freezes the snapshot's live prices into order lines.
func BuildItems(snap cart.Snapshot) []Item {
	items := make([]Item, 0, len(snap.Lines))
	for _, l := range snap.Lines {
		items = append(items, Item{
			ProductID: l.ProductID,
			Title:     l.Title,
			SKU:       l.SKU,
			Quantity:  l.Quantity,
			Price:     l.Price,
		})
	}
	return items
}

func Total(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// NewOrder builds a Placed order from a resolved cart. TotalAmount is
// computed here once and never recomputed.
func NewOrder(req PlaceRequest, snap cart.Snapshot, now time.Time) Order {
	items := BuildItems(snap)
	o := Order{
		ID:            uuid.NewString(),
		UserID:        req.UserID,
		Items:         items,
		Address:       req.Address,
		TotalAmount:   Total(items),
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: req.PaymentStatus,
		Status:        StatusPlaced,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.Refs != nil {
		o.GatewayOrderID = req.Refs.GatewayOrderID
		o.PaymentID = req.Refs.PaymentID
	}
	return o
}

func (o Order) StockLines() []inventory.Line {
	out := make([]inventory.Line, 0, len(o.Items))
	for _, it := range o.Items {
		out = append(out, inventory.Line{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}
