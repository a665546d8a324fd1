package order

import (
	"context"
	"errors"

	"kedairuang-be/internal/capacity"
	"kedairuang-be/internal/clock"
	"kedairuang-be/internal/logger"
	"kedairuang-be/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CheckoutInput struct {
	CustomerName  string
	CustomerEmail string
	PaymentMethod PaymentMethod
	Items         []CheckoutItem
}

type Service interface {
	Checkout(ctx context.Context, input CheckoutInput) (*Order, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*Order, error)
	MarkPaid(ctx context.Context, orderID uuid.UUID) (*Order, error)
	VerifyManualPayment(ctx context.Context, orderID uuid.UUID) (*Order, error)
	Refund(ctx context.Context, orderID uuid.UUID) (*Order, error)
	Cancel(ctx context.Context, orderID uuid.UUID) (bool, error)
}

type service struct {
	repo Repository
	clk  clock.Clock
}

func NewService(repo Repository, clk clock.Clock) Service {
	return &service{repo: repo, clk: clk}
}

func (s *service) Checkout(ctx context.Context, input CheckoutInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("method", "Checkout"),
		zap.Int("item_count", len(input.Items)),
		zap.String("payment_method", string(input.PaymentMethod)),
	)

	if !input.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}
	if len(input.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}

	now := s.clk.Now()
	o := &Order{
		ID:            uuid.New(),
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		PaymentMethod: input.PaymentMethod,
		PaymentStatus: PaymentUnpaid,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.CreateCheckout(ctx, o, input.Items); err != nil {
		metrics.CheckoutTotal.WithLabelValues(checkoutOutcome(err)).Inc()
		log.Warn("checkout failed", zap.Error(err))
		return nil, err
	}

	metrics.CheckoutTotal.WithLabelValues("created").Inc()
	log.Info("order created", zap.String("order_id", o.ID.String()))
	return o, nil
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	return s.repo.GetOrder(ctx, orderID)
}

func (s *service) MarkPaid(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	o, err := s.repo.MutateOrderTx(ctx, orderID, func(o *Order) error {
		return o.MarkPaid(s.clk.Now())
	})
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("order marked paid",
		zap.String("order_id", orderID.String()),
		zap.String("payment_status", string(o.PaymentStatus)),
	)
	return o, nil
}

func (s *service) VerifyManualPayment(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	o, err := s.repo.MutateOrderTx(ctx, orderID, func(o *Order) error {
		return o.Verify(s.clk.Now())
	})
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("manual payment verified",
		zap.String("order_id", orderID.String()),
	)
	return o, nil
}

func (s *service) Refund(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	o, err := s.repo.MutateOrderTx(ctx, orderID, func(o *Order) error {
		return o.Refund(s.clk.Now())
	})
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("order refunded",
		zap.String("order_id", orderID.String()),
	)
	return o, nil
}

// Cancel is idempotent: cancelling an already cancelled order reports
// (false, nil). Capacity restoration happens inside the same transaction
// as the status flip.
func (s *service) Cancel(ctx context.Context, orderID uuid.UUID) (bool, error) {
	cancelled, restored, err := s.repo.CancelOrderTx(ctx, orderID)
	if err != nil {
		return false, err
	}
	if !cancelled {
		return false, nil
	}

	metrics.ReleaseTotal.WithLabelValues("released").Add(float64(restored))
	return true, nil
}

func checkoutOutcome(err error) string {
	var capErr *capacity.Error
	if errors.As(err, &capErr) {
		return "capacity_rejected"
	}
	return "error"
}
