package orders

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const insightWindow = 30 * 24 * time.Hour

type DailyCount struct {
	Date  string `json:"date"` // YYYY-MM-DD, UTC
	Count int    `json:"count"`
}

type Insights struct {
	TotalOrders          int             `json:"totalOrders"`
	Last30DaysOrders     int             `json:"last30DaysOrders"`
	Previous30DaysOrders int             `json:"previous30DaysOrders"`
	OrderGrowthPercent   decimal.Decimal `json:"orderGrowthPercent"`
	TotalRevenue         decimal.Decimal `json:"totalRevenue"`
	CurrentRevenue       decimal.Decimal `json:"currentRevenue"`
	PreviousRevenue      decimal.Decimal `json:"previousRevenue"`
	RevenueGrowthPercent decimal.Decimal `json:"revenueGrowthPercent"`
	TotalUsers           int             `json:"totalUsers"`
	TotalProducts        int             `json:"totalProducts"`
	StatusCounts         map[string]int  `json:"statusCounts"`
	DailyOrders          []DailyCount    `json:"dailyOrders"`
}

// ComputeInsights compares the last 30 days with the 30 days before them.
func ComputeInsights(now time.Time, stats []OrderStat, users, products int) Insights {
	curStart := now.Add(-insightWindow)
	prevStart := curStart.Add(-insightWindow)

	in := Insights{
		TotalOrders:     len(stats),
		TotalRevenue:    decimal.Zero,
		CurrentRevenue:  decimal.Zero,
		PreviousRevenue: decimal.Zero,
		TotalUsers:      users,
		TotalProducts:   products,
		StatusCounts:    map[string]int{},
		DailyOrders:     []DailyCount{},
	}
	daily := map[string]int{}
	for _, s := range stats {
		in.TotalRevenue = in.TotalRevenue.Add(s.Total)
		st := string(s.Status)
		if st == "" {
			st = string(StatusPlaced)
		}
		in.StatusCounts[st]++

		switch {
		case !s.CreatedAt.Before(curStart) && !s.CreatedAt.After(now):
			in.Last30DaysOrders++
			in.CurrentRevenue = in.CurrentRevenue.Add(s.Total)
			daily[s.CreatedAt.UTC().Format(time.DateOnly)]++
		case !s.CreatedAt.Before(prevStart) && s.CreatedAt.Before(curStart):
			in.Previous30DaysOrders++
			in.PreviousRevenue = in.PreviousRevenue.Add(s.Total)
		}
	}

	in.OrderGrowthPercent = growth(decimal.NewFromInt(int64(in.Last30DaysOrders)), decimal.NewFromInt(int64(in.Previous30DaysOrders)))
	in.RevenueGrowthPercent = growth(in.CurrentRevenue, in.PreviousRevenue)

	for date, n := range daily {
		in.DailyOrders = append(in.DailyOrders, DailyCount{Date: date, Count: n})
	}
	sort.Slice(in.DailyOrders, func(i, j int) bool { return in.DailyOrders[i].Date < in.DailyOrders[j].Date })
	return in
}

// growth is the percent change from prev to cur, rounded to 2 places.
// With no previous value it is 100 if anything happened, else 0.
func growth(cur, prev decimal.Decimal) decimal.Decimal {
	if prev.IsZero() {
		if cur.IsPositive() {
			return decimal.NewFromInt(100)
		}
		return decimal.Zero
	}
	return cur.Sub(prev).Div(prev).Mul(decimal.NewFromInt(100)).Round(2)
}
