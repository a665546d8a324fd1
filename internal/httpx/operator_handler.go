package httpx

import (
	"encoding/json"
	"net/http"

	"kedairuang-be/internal/logger"
	"kedairuang-be/internal/middleware"
	"kedairuang-be/internal/order"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OperatorHandler exposes the back-office transitions. The payment-status
// endpoint accepts only the states an operator may set by hand; verified
// and refunded have their own dedicated flows.
type OperatorHandler struct {
	orders order.Service
}

func NewOperatorHandler(orders order.Service) *OperatorHandler {
	return &OperatorHandler{orders: orders}
}

func (h *OperatorHandler) Register(r chi.Router) {
	r.Post("/orders/{id}/payment-status", h.setPaymentStatus)
	r.Post("/orders/{id}/verification", h.verify)
	r.Post("/orders/{id}/refund", h.refund)
}

type paymentStatusReq struct {
	PaymentStatus string `json:"payment_status"`
}

func (h *OperatorHandler) setPaymentStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req paymentStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	h.logAction(r, "set payment status", id, req.PaymentStatus)

	switch req.PaymentStatus {
	case "paid":
		o, err := h.orders.MarkPaid(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toOrderResp(o))
	case "cancelled":
		cancelled, err := h.orders.Cancel(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"cancelled": cancelled})
	case "unpaid":
		// Payment status never moves backward. The only accepted case is
		// the no-op where the order is still unpaid.
		o, err := h.orders.GetOrder(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if err := o.RevertToUnpaid(); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toOrderResp(o))
	default:
		writeError(w, http.StatusBadRequest, "payment_status must be one of unpaid, paid, cancelled")
	}
}

type verificationReq struct {
	Result string `json:"result"`
}

func (h *OperatorHandler) verify(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req verificationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	h.logAction(r, "verification", id, req.Result)

	switch req.Result {
	case "verified":
		o, err := h.orders.VerifyManualPayment(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toOrderResp(o))
	case "rejected":
		// Rejecting a manual payment proof cancels the order and restores
		// its capacity.
		cancelled, err := h.orders.Cancel(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"cancelled": cancelled})
	default:
		writeError(w, http.StatusBadRequest, "result must be verified or rejected")
	}
}

func (h *OperatorHandler) refund(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	h.logAction(r, "refund", id, "")

	o, err := h.orders.Refund(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResp(o))
}

func (h *OperatorHandler) logAction(r *http.Request, action string, orderID uuid.UUID, arg string) {
	fields := []zap.Field{
		zap.String("action", action),
		zap.String("order_id", orderID.String()),
	}
	if arg != "" {
		fields = append(fields, zap.String("arg", arg))
	}
	if opID, ok := middleware.OperatorIDFrom(r.Context()); ok {
		fields = append(fields, zap.String("operator_id", opID))
	}
	logger.FromCtx(r.Context()).Info("operator action", fields...)
}
