package catalog

import (
	"context"

	"kedairuang-be/internal/capacity"
	"kedairuang-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	GetUnit(ctx context.Context, id uuid.UUID) (*SellableUnit, error)
	ListUnits(ctx context.Context, opts ListOptions) ([]SellableUnit, error)
	CreateUnit(ctx context.Context, input NewUnit) (*SellableUnit, error)
	RetireUnit(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetUnit(ctx context.Context, id uuid.UUID) (*SellableUnit, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListUnits(ctx context.Context, opts ListOptions) ([]SellableUnit, error) {
	if opts.Limit <= 0 {
		opts.Limit = 20
	} else if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}

	return s.repo.List(ctx, opts)
}

func (s *service) CreateUnit(ctx context.Context, input NewUnit) (*SellableUnit, error) {
	if input.Name == "" {
		return nil, ErrEmptyName
	}
	if input.Price <= 0 {
		return nil, ErrInvalidPrice
	}
	if input.Kind != capacity.KindStocked && input.Kind != capacity.KindBookable {
		return nil, ErrInvalidKind
	}
	if input.Kind == capacity.KindBookable {
		// Bookable capacity is governed by reservation windows, never a counter.
		input.ManageStock = false
		input.StockQuantity = 0
	}

	u, err := s.repo.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("sellable unit created",
		zap.String("unit_id", u.ID.String()),
		zap.String("kind", string(u.Kind)),
	)

	return u, nil
}

func (s *service) RetireUnit(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SoftDeleteTx(ctx, id); err != nil {
		return err
	}

	logger.FromCtx(ctx).Info("sellable unit retired", zap.String("unit_id", id.String()))
	return nil
}
