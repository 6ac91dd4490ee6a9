package orders

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeInsights(t *testing.T) {
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	day := 24 * time.Hour
	stats := []OrderStat{
		{Total: decimal.NewFromInt(100), Status: StatusPlaced, CreatedAt: now.Add(-1 * day)},
		{Total: decimal.NewFromInt(200), Status: StatusDelivered, CreatedAt: now.Add(-1 * day)},
		{Total: decimal.NewFromInt(50), Status: StatusCancelled, CreatedAt: now.Add(-10 * day)},
		{Total: decimal.NewFromInt(100), Status: StatusDelivered, CreatedAt: now.Add(-40 * day)},
		{Total: decimal.NewFromInt(100), Status: StatusDelivered, CreatedAt: now.Add(-90 * day)},
	}

	in := ComputeInsights(now, stats, 7, 3)

	assert.Equal(t, 5, in.TotalOrders)
	assert.Equal(t, 3, in.Last30DaysOrders)
	assert.Equal(t, 1, in.Previous30DaysOrders)
	assert.Equal(t, "200", in.OrderGrowthPercent.String())
	assert.Equal(t, "550", in.TotalRevenue.String())
	assert.Equal(t, "350", in.CurrentRevenue.String())
	assert.Equal(t, "100", in.PreviousRevenue.String())
	assert.Equal(t, "250", in.RevenueGrowthPercent.String())
	assert.Equal(t, map[string]int{"Placed": 1, "Delivered": 3, "Cancelled": 1}, in.StatusCounts)
	assert.Equal(t, []DailyCount{{Date: "2025-06-20", Count: 1}, {Date: "2025-06-29", Count: 2}}, in.DailyOrders)
	assert.Equal(t, 7, in.TotalUsers)
	assert.Equal(t, 3, in.TotalProducts)
}

func TestGrowth(t *testing.T) {
	assert.Equal(t, "100", growth(decimal.NewFromInt(3), decimal.Zero).String())
	assert.Equal(t, "0", growth(decimal.Zero, decimal.Zero).String())
	assert.Equal(t, "-33.33", growth(decimal.NewFromInt(2), decimal.NewFromInt(3)).String())
}

func TestComputeInsightsEmpty(t *testing.T) {
	in := ComputeInsights(time.Now(), nil, 0, 0)
	assert.Zero(t, in.TotalOrders)
	assert.NotNil(t, in.DailyOrders)
	assert.True(t, in.RevenueGrowthPercent.IsZero())
}
