package httpx

import (
	"encoding/json"
	"net/http"
	"time"

	"kedairuang-be/internal/order"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type CheckoutItemReq struct {
	UnitID          string     `json:"unit_id"`
	Quantity        int        `json:"quantity"`
	BookingStartsAt *time.Time `json:"booking_starts_at,omitempty"`
	BookingEndsAt   *time.Time `json:"booking_ends_at,omitempty"`
}

type CheckoutReq struct {
	CustomerName  string            `json:"customer_name"`
	CustomerEmail string            `json:"customer_email"`
	PaymentMethod string            `json:"payment_method"`
	Items         []CheckoutItemReq `json:"items"`
}

type LineItemResp struct {
	ID              string     `json:"id"`
	UnitID          *string    `json:"unit_id"`
	UnitName        string     `json:"unit_name"`
	Quantity        int        `json:"quantity"`
	UnitPrice       int64      `json:"unit_price"`
	Subtotal        int64      `json:"subtotal"`
	BookingStartsAt *time.Time `json:"booking_starts_at,omitempty"`
	BookingEndsAt   *time.Time `json:"booking_ends_at,omitempty"`
}

type OrderResp struct {
	ID            string         `json:"id"`
	CustomerName  string         `json:"customer_name"`
	CustomerEmail string         `json:"customer_email"`
	PaymentMethod string         `json:"payment_method"`
	PaymentStatus string         `json:"payment_status"`
	Status        string         `json:"status"`
	TotalAmount   int64          `json:"total_amount"`
	CreatedAt     time.Time      `json:"created_at"`
	PaidAt        *time.Time     `json:"paid_at,omitempty"`
	Items         []LineItemResp `json:"items,omitempty"`
}

func toOrderResp(o *order.Order) OrderResp {
	resp := OrderResp{
		ID:            o.ID.String(),
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		PaymentMethod: string(o.PaymentMethod),
		PaymentStatus: string(o.PaymentStatus),
		Status:        string(o.Status),
		TotalAmount:   o.TotalAmount,
		CreatedAt:     o.CreatedAt,
		PaidAt:        o.PaidAt,
	}
	for _, item := range o.Items {
		li := LineItemResp{
			ID:              item.ID.String(),
			UnitName:        item.UnitName,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			Subtotal:        item.Subtotal,
			BookingStartsAt: item.BookingStartsAt,
			BookingEndsAt:   item.BookingEndsAt,
		}
		if item.UnitID != nil {
			id := item.UnitID.String()
			li.UnitID = &id
		}
		resp.Items = append(resp.Items, li)
	}
	return resp
}

type OrdersHandler struct {
	orders order.Service
}

func NewOrdersHandler(orders order.Service) *OrdersHandler {
	return &OrdersHandler{orders: orders}
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/checkout", h.checkout)
	r.Get("/orders/{id}", h.getOrder)
	r.Post("/orders/{id}/cancel", h.cancelOrder)
}

func (h *OrdersHandler) checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	input := order.CheckoutInput{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		PaymentMethod: order.PaymentMethod(req.PaymentMethod),
	}
	for _, item := range req.Items {
		unitID, err := uuid.Parse(item.UnitID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid unit_id: "+item.UnitID)
			return
		}
		input.Items = append(input.Items, order.CheckoutItem{
			UnitID:          unitID,
			Quantity:        item.Quantity,
			BookingStartsAt: item.BookingStartsAt,
			BookingEndsAt:   item.BookingEndsAt,
		})
	}

	o, err := h.orders.Checkout(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResp(o))
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	o, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResp(o))
}

func (h *OrdersHandler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	cancelled, err := h.orders.Cancel(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"cancelled": cancelled})
}
