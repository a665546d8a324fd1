package capacity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"kedairuang-be/internal/clock"
	"kedairuang-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Reserve and Release run on the caller's transaction so capacity changes
// commit atomically with the order-level change that caused them.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type Ledger struct {
	clk clock.Clock
}

func NewLedger(clk clock.Clock) *Ledger {
	return &Ledger{clk: clk}
}

// Reserve claims capacity on one unit. Stocked units with a managed
// counter are decremented; bookable units are checked for overlap with
// active reservations. The unit row is locked for the duration of the
// caller's transaction, so concurrent writers on the same unit serialize
// here.
func (l *Ledger) Reserve(ctx context.Context, q Querier, req ReserveRequest) (*Reservation, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", req.Quantity)
	}

	var (
		kind        UnitKind
		manageStock bool
		stock       int
		deletedAt   sql.NullTime
	)
	err := q.QueryRowContext(ctx, `
		SELECT kind, manage_stock, stock_quantity, deleted_at
		FROM sellable_units
		WHERE id = $1
		FOR UPDATE
	`, req.UnitID).Scan(&kind, &manageStock, &stock, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUnitNotFound
	}
	if err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		return nil, &Fault{UnitID: req.UnitID, Reason: FaultUnitUnavailable, Requested: req.Quantity}
	}

	switch kind {
	case KindStocked:
		if manageStock {
			if stock < req.Quantity {
				return nil, &Fault{
					UnitID:    req.UnitID,
					Reason:    FaultInsufficientStock,
					Requested: req.Quantity,
					Available: stock,
				}
			}
			_, err = q.ExecContext(ctx, `
				UPDATE sellable_units
				SET stock_quantity = stock_quantity - $1
				WHERE id = $2 AND stock_quantity >= $1
			`, req.Quantity, req.UnitID)
			if err != nil {
				return nil, err
			}
		}
	case KindBookable:
		if req.StartsAt == nil || req.EndsAt == nil {
			return nil, ErrMissingTimeRange
		}
		if !req.EndsAt.After(*req.StartsAt) {
			return nil, ErrInvalidTimeRange
		}

		var taken bool
		err = q.QueryRowContext(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM capacity_reservations
				WHERE unit_id = $1
				  AND status = 'reserved'
				  AND starts_at < $3
				  AND ends_at > $2
			)
		`, req.UnitID, req.StartsAt, req.EndsAt).Scan(&taken)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, &Fault{UnitID: req.UnitID, Reason: FaultSlotConflict, Requested: req.Quantity}
		}
	default:
		return nil, fmt.Errorf("unknown unit kind %q", kind)
	}

	res := &Reservation{
		ID:        uuid.New(),
		UnitID:    req.UnitID,
		Kind:      kind,
		Quantity:  req.Quantity,
		StartsAt:  req.StartsAt,
		EndsAt:    req.EndsAt,
		Status:    StatusReserved,
		CreatedAt: l.clk.Now(),
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO capacity_reservations (
			id, unit_id, kind, quantity, starts_at, ends_at, status, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, res.ID, res.UnitID, res.Kind, res.Quantity, res.StartsAt, res.EndsAt, res.Status, res.CreatedAt)
	if err != nil {
		return nil, err
	}

	return res, nil
}

// Release restores the capacity held by a reservation. The flip to
// released is a single conditional update, so when the sweeper and a
// manual cancel race only one writer's update has effect; the loser gets
// (false, nil) and must not touch the counter. Releasing an already
// released reservation is a success no-op.
func (l *Ledger) Release(ctx context.Context, q Querier, reservationID uuid.UUID) (bool, error) {
	var (
		unitID   uuid.UUID
		kind     UnitKind
		quantity int
	)
	err := q.QueryRowContext(ctx, `
		UPDATE capacity_reservations
		SET status = 'released', released_at = $2
		WHERE id = $1 AND status = 'reserved'
		RETURNING unit_id, kind, quantity
	`, reservationID, l.clk.Now()).Scan(&unitID, &kind, &quantity)

	if errors.Is(err, sql.ErrNoRows) {
		var status ReservationStatus
		err = q.QueryRowContext(ctx, `
			SELECT status FROM capacity_reservations WHERE id = $1
		`, reservationID).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrReservationNotFound
		}
		if err != nil {
			return false, err
		}
		// Already released by a concurrent writer.
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if kind == KindStocked {
		// Counter only moves when the unit manages stock; the reservation
		// slot itself is the record for unmanaged and bookable units.
		_, err = q.ExecContext(ctx, `
			UPDATE sellable_units
			SET stock_quantity = stock_quantity + $1
			WHERE id = $2 AND manage_stock
		`, quantity, unitID)
		if err != nil {
			return false, err
		}
	}

	logger.FromCtx(ctx).Debug("capacity released",
		zap.String("reservation_id", reservationID.String()),
		zap.String("unit_id", unitID.String()),
		zap.String("kind", string(kind)),
		zap.Int("quantity", quantity),
	)

	return true, nil
}
