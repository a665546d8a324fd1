package payment

import (
	"context"
	"testing"
	"time"

	"kedairuang-be/internal/order"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) MarkPaid(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
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

func (m *MockOrderService) Refund(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func paidOrder(id uuid.UUID) *order.Order {
	now := time.Now()
	return &order.Order{
		ID:            id,
		PaymentMethod: order.MethodGateway,
		PaymentStatus: order.PaymentPaid,
		Status:        order.StatusConfirmed,
		PaidAt:        &now,
	}
}

func TestService_HandleNotification(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()
	verifier := NewVerifier(testServerKey)

	signed := func(status string) Notification {
		return signedNotification(orderID.String(), status, "150000.00")
	}

	t.Run("SettlementMarksPaid", func(t *testing.T) {
		orders := new(MockOrderService)
		svc := NewService(verifier, orders)

		orders.On("MarkPaid", ctx, orderID).Return(paidOrder(orderID), nil)

		outcome, err := svc.HandleNotification(ctx, signed(StatusSettlement))
		require.NoError(t, err)
		assert.Equal(t, OutcomeApplied, outcome)
		orders.AssertExpectations(t)
	})

	t.Run("ForgedSignatureNeverTouchesOrders", func(t *testing.T) {
		orders := new(MockOrderService)
		svc := NewService(verifier, orders)

		n := signed(StatusSettlement)
		n.Signature = Signature(orderID.String(), StatusSettlement, "150000.00", "forged-key")

		_, err := svc.HandleNotification(ctx, n)
		assert.ErrorIs(t, err, ErrInvalidSignature)
		orders.AssertNotCalled(t, "MarkPaid")
		orders.AssertNotCalled(t, "Cancel")
		orders.AssertNotCalled(t, "Refund")
	})

	t.Run("DuplicateSettlementIsNoop", func(t *testing.T) {
		orders := new(MockOrderService)
		svc := NewService(verifier, orders)

		// MarkPaid on an already paid order succeeds without changes.
		orders.On("MarkPaid", ctx, orderID).Return(paidOrder(orderID), nil).Twice()

		for i := 0; i < 2; i++ {
			outcome, err := svc.HandleNotification(ctx, signed(StatusSettlement))
			require.NoError(t, err)
			assert.Equal(t, OutcomeApplied, outcome)
		}
		orders.AssertExpectations(t)
	})

	t.Run("ExpireCancels", func(t *testing.T) {
		orders := new(MockOrderService)
		svc := NewService(verifier, orders)

		orders.On("Cancel", ctx, orderID).Return(true, nil)

		outcome, err := svc.HandleNotification(ctx, signed(StatusExpire))
		require.NoError(t, err)
		assert.Equal(t, OutcomeApplied, outcome)
	})

	t.Run("RefundRefunds", func(t *testing.T) {
		orders := new(MockOrderService)
		svc := NewService(verifier, orders)

		refunded := paidOrder(orderID)
		refunded.PaymentStatus = order.PaymentRefunded
		orders.On("Refund", ctx, orderID).Return(refunded, nil)

		outcome, err := svc.HandleNotification(ctx, signed(StatusRefund))
		require.NoError(t, err)
		assert.Equal(t, OutcomeApplied, outcome)
	})

	t.Run("PendingIgnored", func(t *testing.T) {
		orders := new(MockOrderService)
		svc := NewService(verifier, orders)

		outcome, err := svc.HandleNotification(ctx, signed(StatusPending))
		require.NoError(t, err)
		assert.Equal(t, OutcomeIgnored, outcome)
		orders.AssertNotCalled(t, "MarkPaid")
	})

	t.Run("UnknownStatusIgnored", func(t *testing.T) {
		orders := new(MockOrderService)
		svc := NewService(verifier, orders)

		outcome, err := svc.HandleNotification(ctx, signed("challenge"))
		require.NoError(t, err)
		assert.Equal(t, OutcomeIgnored, outcome)
	})

	t.Run("MalformedOrderRef", func(t *testing.T) {
		orders := new(MockOrderService)
		svc := NewService(verifier, orders)

		n := signedNotification("not-a-uuid", StatusSettlement, "10.00")
		_, err := svc.HandleNotification(ctx, n)
		assert.ErrorIs(t, err, ErrMalformedOrderRef)
	})
}
