// Package catalog owns products: the priced, stocked items carts and orders
// refer to. Stock is written here only by explicit admin updates; order flows
// adjust it through the inventory ledger.
package catalog

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/apperr"
)

type Product struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	SKU         string          `json:"sku"`
	Images      []string        `json:"images"`
	Image       string          `json:"image"` // cover, first of Images
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// NormalizeSKU trims and upper-cases a SKU.
func NormalizeSKU(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

type NewProduct struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	SKU         string          `json:"sku"`
	Images      []string        `json:"images"`
}

// Normalize validates n in place.
func (n *NewProduct) Normalize() error {
	n.Title = strings.TrimSpace(n.Title)
	n.SKU = NormalizeSKU(n.SKU)
	if n.Title == "" {
		return apperr.Validation("title is required")
	}
	if n.Price.IsNegative() {
		return apperr.Validation("price must not be negative")
	}
	if n.SKU == "" {
		return apperr.Validation("SKU is required")
	}
	if n.Stock < 0 {
		return apperr.Validation("stock must not be negative")
	}
	imgs, err := cleanImages(n.Images)
	if err != nil {
		return err
	}
	n.Images = imgs
	return nil
}

// ProductPatch is a partial update; nil fields are left unchanged.
type ProductPatch struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	SKU         *string          `json:"sku"`
	Images      []string         `json:"images"`
}

func (p *ProductPatch) Normalize() error {
	if p.Title != nil {
		t := strings.TrimSpace(*p.Title)
		if t == "" {
			return apperr.Validation("title cannot be empty")
		}
		p.Title = &t
	}
	if p.SKU != nil {
		s := NormalizeSKU(*p.SKU)
		if s == "" {
			return apperr.Validation("SKU cannot be empty")
		}
		p.SKU = &s
	}
	if p.Price != nil && p.Price.IsNegative() {
		return apperr.Validation("price must not be negative")
	}
	if p.Stock != nil && *p.Stock < 0 {
		return apperr.Validation("stock must not be negative")
	}
	if p.Images != nil {
		imgs, err := cleanImages(p.Images)
		if err != nil {
			return err
		}
		p.Images = imgs
	}
	return nil
}

func cleanImages(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	for _, u := range in {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	if len(out) == 0 {
		return nil, apperr.Validation("at least one image URL is required")
	}
	return out, nil
}

type Filter struct {
	Search   string // case-insensitive substring of title, description or sku
	Category string // case-insensitive exact match
}
