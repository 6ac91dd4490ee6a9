package httpx

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/catalog"
)

// Catalog is implemented by *catalog.Repo.
type Catalog interface {
	Create(ctx context.Context, n catalog.NewProduct) (catalog.Product, error)
	Get(ctx context.Context, id string) (catalog.Product, error)
	List(ctx context.Context, f catalog.Filter) ([]catalog.Product, error)
	Update(ctx context.Context, id string, patch catalog.ProductPatch) (catalog.Product, error)
	Delete(ctx context.Context, id string) error
}

type productsHandler struct{ store Catalog }

func (h *productsHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ps, err := h.store.List(r.Context(), catalog.Filter{Search: q.Get("search"), Category: q.Get("category")})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *productsHandler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *productsHandler) create(w http.ResponseWriter, r *http.Request) {
	var body catalog.NewProduct
	if !decodeJSON(w, r, &body) {
		return
	}
	p, err := h.store.Create(r.Context(), body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *productsHandler) update(w http.ResponseWriter, r *http.Request) {
	var body catalog.ProductPatch
	if !decodeJSON(w, r, &body) {
		return
	}
	p, err := h.store.Update(r.Context(), chi.URLParam(r, "id"), body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *productsHandler) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Product deleted successfully")
}
