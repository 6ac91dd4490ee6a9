package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/inventory"
)

func TestSnapshotTotal(t *testing.T) {
	s := Snapshot{Lines: []Line{
		{ProductID: "a", Price: decimal.NewFromInt(100), Quantity: 2},
		{ProductID: "b", Price: decimal.NewFromInt(50), Quantity: 1},
	}}
	assert.True(t, s.Total().Equal(decimal.NewFromInt(250)), "got %s", s.Total())
	assert.Equal(t, []inventory.Line{{ProductID: "a", Quantity: 2}, {ProductID: "b", Quantity: 1}}, s.StockLines())
}

func TestSnapshotTotalFractional(t *testing.T) {
	s := Snapshot{Lines: []Line{
		{Price: decimal.RequireFromString("0.10"), Quantity: 3},
		{Price: decimal.RequireFromString("19.99"), Quantity: 1},
	}}
	assert.Equal(t, "20.29", s.Total().StringFixed(2))
}

func TestEmptySnapshot(t *testing.T) {
	var s Snapshot
	assert.True(t, s.Empty())
	assert.True(t, s.Total().IsZero())
}
