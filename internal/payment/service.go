package payment

import (
	"context"

	"kedairuang-be/internal/logger"
	"kedairuang-be/internal/metrics"
	"kedairuang-be/internal/order"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService is the slice of the order service the verifier drives.
type OrderService interface {
	MarkPaid(ctx context.Context, orderID uuid.UUID) (*order.Order, error)
	Cancel(ctx context.Context, orderID uuid.UUID) (bool, error)
	Refund(ctx context.Context, orderID uuid.UUID) (*order.Order, error)
}

type Service interface {
	HandleNotification(ctx context.Context, n Notification) (Outcome, error)
}

type service struct {
	verifier *Verifier
	orders   OrderService
}

func NewService(verifier *Verifier, orders OrderService) Service {
	return &service{verifier: verifier, orders: orders}
}

// HandleNotification authenticates the callback and maps the gateway
// status vocabulary onto a state machine transition. Duplicate deliveries
// are no-ops: the underlying transitions tolerate being re-driven.
func (s *service) HandleNotification(ctx context.Context, n Notification) (Outcome, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("order_id", n.OrderID),
		zap.String("status_code", n.StatusCode),
		zap.String("gross_amount", n.GrossAmount),
	)

	if err := s.verifier.Verify(n); err != nil {
		metrics.WebhookTotal.WithLabelValues("invalid_signature").Inc()
		log.Warn("payment notification rejected: signature mismatch")
		return "", err
	}

	orderID, err := uuid.Parse(n.OrderID)
	if err != nil {
		return "", ErrMalformedOrderRef
	}

	switch n.StatusCode {
	case StatusCapture, StatusSettlement:
		if _, err := s.orders.MarkPaid(ctx, orderID); err != nil {
			metrics.WebhookTotal.WithLabelValues("error").Inc()
			return "", err
		}

	case StatusDeny, StatusCancel, StatusExpire:
		if _, err := s.orders.Cancel(ctx, orderID); err != nil {
			metrics.WebhookTotal.WithLabelValues("error").Inc()
			return "", err
		}

	case StatusRefund, StatusPartialRefund:
		if _, err := s.orders.Refund(ctx, orderID); err != nil {
			metrics.WebhookTotal.WithLabelValues("error").Inc()
			return "", err
		}

	case StatusPending:
		metrics.WebhookTotal.WithLabelValues("ignored").Inc()
		return OutcomeIgnored, nil

	default:
		metrics.WebhookTotal.WithLabelValues("ignored").Inc()
		log.Warn("unknown gateway status, ignoring")
		return OutcomeIgnored, nil
	}

	metrics.WebhookTotal.WithLabelValues("applied").Inc()
	log.Info("payment notification applied")
	return OutcomeApplied, nil
}
