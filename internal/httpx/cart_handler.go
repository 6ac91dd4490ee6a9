package httpx

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/cart"
)

// Carts is implemented by *cart.Repo.
type Carts interface {
	Get(ctx context.Context, userID string) (cart.Snapshot, error)
	Add(ctx context.Context, userID, productID string, quantity int) (cart.Snapshot, error)
	SetQuantity(ctx context.Context, userID, productID string, quantity int) (cart.Snapshot, error)
	Remove(ctx context.Context, userID, productID string) (cart.Snapshot, error)
}

type cartView struct {
	cart.Snapshot
	Total decimal.Decimal `json:"total"`
}

type cartHandler struct{ store Carts }

func writeCart(w http.ResponseWriter, r *http.Request, s cart.Snapshot, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	if s.Lines == nil {
		s.Lines = []cart.Line{}
	}
	writeJSON(w, http.StatusOK, cartView{Snapshot: s, Total: s.Total()})
}

func (h *cartHandler) get(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.Get(r.Context(), userID(r))
	writeCart(w, r, s, err)
}

func (h *cartHandler) add(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID string `json:"productId"`
		Quantity  *int   `json:"quantity"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	qty := 1
	if body.Quantity != nil {
		qty = *body.Quantity
	}
	s, err := h.store.Add(r.Context(), userID(r), body.ProductID, qty)
	writeCart(w, r, s, err)
}

func (h *cartHandler) setQuantity(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Quantity int `json:"quantity"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	s, err := h.store.SetQuantity(r.Context(), userID(r), chi.URLParam(r, "productId"), body.Quantity)
	writeCart(w, r, s, err)
}

func (h *cartHandler) remove(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.Remove(r.Context(), userID(r), chi.URLParam(r, "productId"))
	writeCart(w, r, s, err)
}
