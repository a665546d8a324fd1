package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kedairuang-be/internal/capacity"
	"kedairuang-be/internal/catalog"
	"kedairuang-be/internal/order"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Checkout(ctx context.Context, input order.CheckoutInput) (*order.Order, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) MarkPaid(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) VerifyManualPayment(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) Refund(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) Cancel(ctx context.Context, orderID uuid.UUID) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

func ordersRouter(svc order.Service) *chi.Mux {
	r := chi.NewRouter()
	NewOrdersHandler(svc).Register(r)
	return r
}

func operatorRouter(svc order.Service) *chi.Mux {
	r := chi.NewRouter()
	NewOperatorHandler(svc).Register(r)
	return r
}

func TestCheckoutEndpoint(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	t.Run("Created", func(t *testing.T) {
		svc := new(MockOrderService)
		router := ordersRouter(svc)

		unitID := uuid.New()
		created := &order.Order{
			ID:            uuid.New(),
			CustomerName:  "Sari",
			PaymentMethod: order.MethodGateway,
			PaymentStatus: order.PaymentUnpaid,
			Status:        order.StatusPending,
			TotalAmount:   45000,
			CreatedAt:     now,
		}

		svc.On("Checkout", mock.Anything, mock.MatchedBy(func(in order.CheckoutInput) bool {
			return in.CustomerName == "Sari" &&
				len(in.Items) == 1 &&
				in.Items[0].UnitID == unitID &&
				in.Items[0].Quantity == 3
		})).Return(created, nil)

		body, _ := json.Marshal(CheckoutReq{
			CustomerName:  "Sari",
			CustomerEmail: "sari@example.com",
			PaymentMethod: "gateway",
			Items: []CheckoutItemReq{
				{UnitID: unitID.String(), Quantity: 3},
			},
		})

		req := httptest.NewRequest("POST", "/checkout", bytes.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)

		var resp OrderResp
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, created.ID.String(), resp.ID)
		assert.Equal(t, "unpaid", resp.PaymentStatus)
		assert.Equal(t, "pending", resp.Status)
	})

	t.Run("CapacityRejectionIs422WithFaults", func(t *testing.T) {
		svc := new(MockOrderService)
		router := ordersRouter(svc)

		unitID := uuid.New()
		svc.On("Checkout", mock.Anything, mock.Anything).Return(nil, &capacity.Error{
			Faults: []*capacity.Fault{
				{UnitID: unitID, Reason: capacity.FaultInsufficientStock, Requested: 5, Available: 2},
			},
		})

		body, _ := json.Marshal(CheckoutReq{
			PaymentMethod: "gateway",
			Items:         []CheckoutItemReq{{UnitID: unitID.String(), Quantity: 5}},
		})

		req := httptest.NewRequest("POST", "/checkout", bytes.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var resp struct {
			Status string          `json:"status"`
			Faults []capacityFault `json:"faults"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "error", resp.Status)
		require.Len(t, resp.Faults, 1)
		assert.Equal(t, unitID.String(), resp.Faults[0].UnitID)
		assert.Equal(t, "insufficient_stock", resp.Faults[0].Reason)
		assert.Equal(t, 5, resp.Faults[0].Requested)
		assert.Equal(t, 2, resp.Faults[0].Available)
	})

	t.Run("BadUnitIDIs400", func(t *testing.T) {
		svc := new(MockOrderService)
		router := ordersRouter(svc)

		body, _ := json.Marshal(CheckoutReq{
			PaymentMethod: "gateway",
			Items:         []CheckoutItemReq{{UnitID: "not-a-uuid", Quantity: 1}},
		})

		req := httptest.NewRequest("POST", "/checkout", bytes.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Checkout", mock.Anything, mock.Anything)
	})

	t.Run("MalformedBodyIs400", func(t *testing.T) {
		svc := new(MockOrderService)
		router := ordersRouter(svc)

		req := httptest.NewRequest("POST", "/checkout", bytes.NewReader([]byte("{not json")))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetOrderEndpoint(t *testing.T) {
	t.Run("NotFoundIs404", func(t *testing.T) {
		svc := new(MockOrderService)
		router := ordersRouter(svc)

		id := uuid.New()
		svc.On("GetOrder", mock.Anything, id).Return(nil, order.ErrOrderNotFound)

		req := httptest.NewRequest("GET", "/orders/"+id.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("BadIDIs400", func(t *testing.T) {
		svc := new(MockOrderService)
		router := ordersRouter(svc)

		req := httptest.NewRequest("GET", "/orders/xyz", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCancelOrderEndpoint(t *testing.T) {
	t.Run("SecondCancelReportsFalse", func(t *testing.T) {
		svc := new(MockOrderService)
		router := ordersRouter(svc)

		id := uuid.New()
		svc.On("Cancel", mock.Anything, id).Return(false, nil)

		req := httptest.NewRequest("POST", "/orders/"+id.String()+"/cancel", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"cancelled": false}`, w.Body.String())
	})

	t.Run("SettledOrderIs409", func(t *testing.T) {
		svc := new(MockOrderService)
		router := ordersRouter(svc)

		id := uuid.New()
		svc.On("Cancel", mock.Anything, id).Return(false, order.ErrInvalidTransition)

		req := httptest.NewRequest("POST", "/orders/"+id.String()+"/cancel", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestOperatorPaymentStatus(t *testing.T) {
	t.Run("PaidDelegatesToMarkPaid", func(t *testing.T) {
		svc := new(MockOrderService)
		router := operatorRouter(svc)

		id := uuid.New()
		svc.On("MarkPaid", mock.Anything, id).Return(&order.Order{
			ID:            id,
			PaymentMethod: order.MethodManualQRIS,
			PaymentStatus: order.PaymentPaid,
			Status:        order.StatusPending,
		}, nil)

		req := httptest.NewRequest("POST", "/orders/"+id.String()+"/payment-status",
			bytes.NewReader([]byte(`{"payment_status":"paid"}`)))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp OrderResp
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "paid", resp.PaymentStatus)
	})

	t.Run("VerifiedIsNotSettableHere", func(t *testing.T) {
		svc := new(MockOrderService)
		router := operatorRouter(svc)

		id := uuid.New()
		req := httptest.NewRequest("POST", "/orders/"+id.String()+"/payment-status",
			bytes.NewReader([]byte(`{"payment_status":"verified"}`)))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "VerifyManualPayment", mock.Anything, mock.Anything)
	})

	t.Run("UnpaidOnPaidOrderIs409", func(t *testing.T) {
		svc := new(MockOrderService)
		router := operatorRouter(svc)

		id := uuid.New()
		svc.On("GetOrder", mock.Anything, id).Return(&order.Order{
			ID:            id,
			PaymentStatus: order.PaymentPaid,
		}, nil)

		req := httptest.NewRequest("POST", "/orders/"+id.String()+"/payment-status",
			bytes.NewReader([]byte(`{"payment_status":"unpaid"}`)))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestOperatorVerification(t *testing.T) {
	t.Run("Verified", func(t *testing.T) {
		svc := new(MockOrderService)
		router := operatorRouter(svc)

		id := uuid.New()
		svc.On("VerifyManualPayment", mock.Anything, id).Return(&order.Order{
			ID:            id,
			PaymentMethod: order.MethodManualBankTransfer,
			PaymentStatus: order.PaymentVerified,
			Status:        order.StatusConfirmed,
		}, nil)

		req := httptest.NewRequest("POST", "/orders/"+id.String()+"/verification",
			bytes.NewReader([]byte(`{"result":"verified"}`)))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp OrderResp
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "verified", resp.PaymentStatus)
		assert.Equal(t, "confirmed", resp.Status)
	})

	t.Run("RejectedCancelsOrder", func(t *testing.T) {
		svc := new(MockOrderService)
		router := operatorRouter(svc)

		id := uuid.New()
		svc.On("Cancel", mock.Anything, id).Return(true, nil)

		req := httptest.NewRequest("POST", "/orders/"+id.String()+"/verification",
			bytes.NewReader([]byte(`{"result":"rejected"}`)))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"cancelled": true}`, w.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("GatewayOrderIs409", func(t *testing.T) {
		svc := new(MockOrderService)
		router := operatorRouter(svc)

		id := uuid.New()
		svc.On("VerifyManualPayment", mock.Anything, id).Return(nil, order.ErrNotManualMethod)

		req := httptest.NewRequest("POST", "/orders/"+id.String()+"/verification",
			bytes.NewReader([]byte(`{"result":"verified"}`)))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) GetUnit(ctx context.Context, id uuid.UUID) (*catalog.SellableUnit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.SellableUnit), args.Error(1)
}

func (m *MockCatalogService) ListUnits(ctx context.Context, opts catalog.ListOptions) ([]catalog.SellableUnit, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.SellableUnit), args.Error(1)
}

func (m *MockCatalogService) CreateUnit(ctx context.Context, input catalog.NewUnit) (*catalog.SellableUnit, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.SellableUnit), args.Error(1)
}

func (m *MockCatalogService) RetireUnit(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestCatalogEndpoints(t *testing.T) {
	t.Run("ListFiltersByKind", func(t *testing.T) {
		svc := new(MockCatalogService)
		r := chi.NewRouter()
		NewCatalogHandler(svc).RegisterPublic(r)

		bookable := capacity.KindBookable
		svc.On("ListUnits", mock.Anything, catalog.ListOptions{Kind: &bookable, Limit: 5}).
			Return([]catalog.SellableUnit{}, nil)

		req := httptest.NewRequest("GET", "/units?kind=bookable&limit=5", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("RetireReturns204", func(t *testing.T) {
		svc := new(MockCatalogService)
		r := chi.NewRouter()
		NewCatalogHandler(svc).RegisterOperator(r)

		id := uuid.New()
		svc.On("RetireUnit", mock.Anything, id).Return(nil)

		req := httptest.NewRequest("DELETE", "/units/"+id.String(), nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("RetireUnknownIs404", func(t *testing.T) {
		svc := new(MockCatalogService)
		r := chi.NewRouter()
		NewCatalogHandler(svc).RegisterOperator(r)

		id := uuid.New()
		svc.On("RetireUnit", mock.Anything, id).Return(catalog.ErrUnitNotFound)

		req := httptest.NewRequest("DELETE", "/units/"+id.String(), nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
