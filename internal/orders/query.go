package orders

import (
	"slices"
	"strings"
)

// AdminQuery narrows and reorders the admin order list. The base order is
// newest first; sorts are stable on top of it.
type AdminQuery struct {
	SKU           string // substring of any line's SKU, case-insensitive
	SKUSort       string // asc | desc, by first line SKU
	StatusFilter  string // exact status, or "all"
	CancelledSort string // first | last
}

func (q AdminQuery) Apply(list []Order) []Order {
	out := list
	if sku := strings.ToLower(strings.TrimSpace(q.SKU)); sku != "" {
		out = slices.DeleteFunc(slices.Clone(out), func(o Order) bool {
			return !slices.ContainsFunc(o.Items, func(it Item) bool {
				return it.SKU != "" && strings.Contains(strings.ToLower(it.SKU), sku)
			})
		})
	}

	if q.SKUSort == "asc" || q.SKUSort == "desc" {
		out = slices.Clone(out)
		slices.SortStableFunc(out, func(a, b Order) int {
			c := strings.Compare(firstSKU(a), firstSKU(b))
			if q.SKUSort == "desc" {
				return -c
			}
			return c
		})
	}

	if q.StatusFilter != "" && q.StatusFilter != "all" {
		out = slices.DeleteFunc(slices.Clone(out), func(o Order) bool {
			return string(o.Status) != q.StatusFilter
		})
	}

	if q.CancelledSort == "first" || q.CancelledSort == "last" {
		out = slices.Clone(out)
		slices.SortStableFunc(out, func(a, b Order) int {
			ac, bc := cancelledRank(a), cancelledRank(b)
			if q.CancelledSort == "first" {
				return bc - ac
			}
			return ac - bc
		})
	}
	return out
}

func firstSKU(o Order) string {
	for _, it := range o.Items {
		if it.SKU != "" {
			return it.SKU
		}
	}
	return ""
}

func cancelledRank(o Order) int {
	if o.Status == StatusCancelled {
		return 1
	}
	return 0
}
