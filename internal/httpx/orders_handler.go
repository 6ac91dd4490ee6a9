package httpx

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/invoice"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/orders"
)

type ordersHandler struct {
	svc      *orders.Service
	invoices invoice.Renderer
}

func (h *ordersHandler) place(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Address orders.Address `json:"address"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	o, err := h.svc.PlaceCOD(r.Context(), userID(r), body.Address)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg{"message": "Order placed successfully", "orderId": o.ID})
}

func (h *ordersHandler) paymentOrder(w http.ResponseWriter, r *http.Request) {
	po, err := h.svc.CreatePaymentOrder(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, po)
}

func (h *ordersHandler) verifyPayment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		orders.PaymentRefs
		Address orders.Address `json:"address"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	o, err := h.svc.VerifyAndPlace(r.Context(), userID(r), body.Address, body.PaymentRefs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg{"message": "Payment verified and order placed", "orderId": o.ID})
}

func (h *ordersHandler) mine(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Mine(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ordersHandler) cancel(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Reason string `json:"cancelReason"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	o, err := h.svc.Cancel(r.Context(), chi.URLParam(r, "id"), userID(r), body.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msg{"message": "Order cancelled successfully", "order": o})
}

func (h *ordersHandler) setStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	o, err := h.svc.SetStatus(r.Context(), chi.URLParam(r, "id"), body.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msg{"message": "Order status updated", "order": o})
}

func (h *ordersHandler) adminList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.svc.AdminList(r.Context(), orders.AdminQuery{
		SKU:           q.Get("sku"),
		SKUSort:       q.Get("skuSort"),
		StatusFilter:  q.Get("statusFilter"),
		CancelledSort: q.Get("cancelledSort"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ordersHandler) insights(w http.ResponseWriter, r *http.Request) {
	in, err := h.svc.Insights(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, in)
}

// invoice renders into a buffer first so a failure still yields a JSON error.
func (h *ordersHandler) invoice(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.InvoiceOrder(r.Context(), chi.URLParam(r, "id"), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := h.invoices.Render(&buf, o); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+invoice.FileName(o.ID)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
