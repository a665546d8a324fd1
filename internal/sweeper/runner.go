package sweeper

import (
	"context"
	"time"

	"kedairuang-be/internal/logger"

	"go.uber.org/zap"
)

// Runner drives the sweep service on a fixed interval until the context
// is cancelled. One pass runs immediately on start so a freshly booted
// sweeper does not wait a full interval before doing useful work.
type Runner struct {
	svc      *Service
	interval time.Duration
}

func NewRunner(svc *Service, interval time.Duration) *Runner {
	return &Runner{svc: svc, interval: interval}
}

func (r *Runner) Start(ctx context.Context) {
	log := logger.FromCtx(ctx)
	log.Info("sweeper started", zap.Duration("interval", r.interval))

	if _, err := r.svc.Run(ctx); err != nil {
		log.Error("sweep pass failed", zap.Error(err))
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("sweeper stopped")
			return
		case <-ticker.C:
			if _, err := r.svc.Run(ctx); err != nil {
				log.Error("sweep pass failed", zap.Error(err))
			}
		}
	}
}
