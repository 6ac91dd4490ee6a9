package httpx

import (
	"context"
	"net/http"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/contact"
)

// Contacts is implemented by *contact.Repo.
type Contacts interface {
	Create(ctx context.Context, m contact.Message) (contact.Message, error)
	List(ctx context.Context) ([]contact.Message, error)
}

type contactHandler struct{ store Contacts }

func (h *contactHandler) create(w http.ResponseWriter, r *http.Request) {
	var body contact.Message
	if !decodeJSON(w, r, &body) {
		return
	}
	m, err := h.store.Create(r.Context(), body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg{"message": "Your message has been sent successfully.", "id": m.ID})
}

func (h *contactHandler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
