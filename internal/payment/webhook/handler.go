package webhook

import (
	"encoding/json"
	"errors"
	"net/http"

	"kedairuang-be/internal/logger"
	"kedairuang-be/internal/order"
	"kedairuang-be/internal/payment"

	"go.uber.org/zap"
)

// Handler receives asynchronous payment notifications on an
// unauthenticated transport; the signature inside the payload is the
// only credential.
type Handler struct {
	payments payment.Service
}

func NewHandler(payments payment.Service) *Handler {
	return &Handler{payments: payments}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var n payment.Notification
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"status": "error", "message": "Invalid payload",
		})
		return
	}
	defer r.Body.Close()

	outcome, err := h.payments.HandleNotification(r.Context(), n)
	switch {
	case errors.Is(err, payment.ErrInvalidSignature):
		// No detail beyond the rejection; nothing here may help forging
		// a valid signature.
		writeJSON(w, http.StatusForbidden, map[string]string{
			"status": "error", "message": "Invalid signature",
		})
		return
	case errors.Is(err, payment.ErrMalformedOrderRef),
		errors.Is(err, order.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{
			"status": "error", "message": "Order not found",
		})
		return
	case errors.Is(err, order.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, map[string]string{
			"status": "error", "message": "Order state does not accept this notification",
		})
		return
	case err != nil:
		logger.FromCtx(r.Context()).Error("payment notification failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status": "error", "message": "Internal error",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": string(outcome)})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
