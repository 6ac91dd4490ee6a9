package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/livechat"
)

type chatHandler struct{ svc *livechat.Service }

// create attributes the message to the signed-in user when a valid user
// token is present; anyone else posts as a guest.
func (h *chatHandler) create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message string `json:"message"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	m, err := h.svc.Create(r.Context(), userID(r), body.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *chatHandler) mine(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Mine(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *chatHandler) adminList(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.AdminList(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *chatHandler) reply(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Reply string `json:"reply"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	m, err := h.svc.Reply(r.Context(), chi.URLParam(r, "id"), body.Reply)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *chatHandler) close(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Close(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msg{"message": "Chat closed and deleted successfully.", "id": id})
}
