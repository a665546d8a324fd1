package sweeper

import (
	"context"
	"errors"
	"time"

	"kedairuang-be/internal/clock"
	"kedairuang-be/internal/logger"
	"kedairuang-be/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// How many stale orders one pass will expire. Anything beyond the cap is
// picked up next tick.
const expireBatchSize = 100

type Repository interface {
	RestoreDueItemsTx(ctx context.Context, now time.Time) (int, error)
	ListExpiredUnpaid(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error)
}

type OrderCanceller interface {
	Cancel(ctx context.Context, orderID uuid.UUID) (bool, error)
}

type Report struct {
	RestoredItems int
	ExpiredOrders int
}

// Service runs the two time-driven sweeps: restoring capacity for line
// items whose booking window ended, and cancelling orders left unpaid
// past the expiry window. Both are idempotent to re-invocation and safe
// to run concurrently with user- and operator-initiated transitions.
type Service struct {
	repo   Repository
	orders OrderCanceller
	clk    clock.Clock
	expiry time.Duration
}

func NewService(repo Repository, orders OrderCanceller, clk clock.Clock, expiry time.Duration) *Service {
	return &Service{repo: repo, orders: orders, clk: clk, expiry: expiry}
}

// Run executes both sweeps. They are independent: a failure in one does
// not stop the other, and both are retried on the next tick.
func (s *Service) Run(ctx context.Context) (Report, error) {
	log := logger.FromCtx(ctx).With(zap.String("job", "sweep"))
	now := s.clk.Now()

	var report Report
	var errs []error

	restored, err := s.repo.RestoreDueItemsTx(ctx, now)
	if err != nil {
		log.Error("restore sweep failed, batch rolled back", zap.Error(err))
		errs = append(errs, err)
	} else {
		report.RestoredItems = restored
		metrics.SweepRestoredTotal.Add(float64(restored))
	}

	expired, err := s.expireStaleOrders(ctx, now)
	if err != nil {
		log.Error("expiry sweep failed", zap.Error(err))
		errs = append(errs, err)
	}
	report.ExpiredOrders = expired

	if report.RestoredItems > 0 || report.ExpiredOrders > 0 {
		log.Info("sweep finished",
			zap.Int("restored_items", report.RestoredItems),
			zap.Int("expired_orders", report.ExpiredOrders),
		)
	}

	return report, errors.Join(errs...)
}

func (s *Service) expireStaleOrders(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-s.expiry)

	ids, err := s.repo.ListExpiredUnpaid(ctx, cutoff, expireBatchSize)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, id := range ids {
		cancelled, err := s.orders.Cancel(ctx, id)
		if err != nil {
			// Cancellation is per-order transactional; keep going so one
			// bad order does not starve the rest of the batch.
			logger.FromCtx(ctx).Error("failed to expire order",
				zap.String("order_id", id.String()),
				zap.Error(err),
			)
			continue
		}
		if cancelled {
			expired++
			metrics.SweepExpiredTotal.Inc()
		}
	}

	return expired, nil
}
