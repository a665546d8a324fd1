package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"kedairuang-be/internal/capacity"
	"kedairuang-be/internal/clock"
	"kedairuang-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutItem is one requested line at the checkout boundary.
type CheckoutItem struct {
	UnitID          uuid.UUID
	Quantity        int
	BookingStartsAt *time.Time
	BookingEndsAt   *time.Time
}

type Repository interface {
	CreateCheckout(ctx context.Context, o *Order, items []CheckoutItem) error
	GetOrder(ctx context.Context, orderID uuid.UUID) (*Order, error)
	MutateOrderTx(ctx context.Context, orderID uuid.UUID, apply func(*Order) error) (*Order, error)
	CancelOrderTx(ctx context.Context, orderID uuid.UUID) (cancelled bool, restored int, err error)
	RestoreDueItemsTx(ctx context.Context, now time.Time) (int, error)
	ListExpiredUnpaid(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error)
}

type repository struct {
	db     *sql.DB
	ledger *capacity.Ledger
	clk    clock.Clock
}

func NewRepository(db *sql.DB, ledger *capacity.Ledger, clk clock.Clock) Repository {
	return &repository{db: db, ledger: ledger, clk: clk}
}

// CreateCheckout builds the order and claims capacity for every item in
// one transaction. If any item cannot be reserved nothing is committed
// and the returned capacity.Error lists every failed item, not just the
// first one.
func (r *repository) CreateCheckout(ctx context.Context, o *Order, items []CheckoutItem) error {
	log := logger.FromCtx(ctx).With(
		zap.String("order_id", o.ID.String()),
		zap.Int("item_count", len(items)),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback checkout transaction", zap.Error(rbErr))
			}
		}
	}()

	var (
		faults    []*capacity.Fault
		lineItems []LineItem
		total     int64
	)

	for _, it := range items {
		var (
			unitName string
			price    int64
		)
		err := tx.QueryRowContext(ctx, `
			SELECT name, price FROM sellable_units WHERE id = $1
		`, it.UnitID).Scan(&unitName, &price)
		if errors.Is(err, sql.ErrNoRows) {
			faults = append(faults, &capacity.Fault{
				UnitID: it.UnitID, Reason: capacity.FaultUnitUnavailable, Requested: it.Quantity,
			})
			continue
		}
		if err != nil {
			return err
		}

		res, err := r.ledger.Reserve(ctx, tx, capacity.ReserveRequest{
			UnitID:   it.UnitID,
			Quantity: it.Quantity,
			StartsAt: it.BookingStartsAt,
			EndsAt:   it.BookingEndsAt,
		})
		if err != nil {
			if fault, ok := capacity.AsFault(err); ok {
				faults = append(faults, fault)
				continue
			}
			return err
		}

		unitID := it.UnitID
		item := LineItem{
			ID:              uuid.New(),
			OrderID:         o.ID,
			UnitID:          &unitID,
			UnitName:        unitName,
			Quantity:        it.Quantity,
			UnitPrice:       price,
			Subtotal:        price * int64(it.Quantity),
			BookingStartsAt: it.BookingStartsAt,
			BookingEndsAt:   it.BookingEndsAt,
			ReservationID:   &res.ID,
		}
		lineItems = append(lineItems, item)
		total += item.Subtotal
	}

	if len(faults) > 0 {
		log.Warn("checkout rejected for capacity", zap.Int("failed_items", len(faults)))
		return &capacity.Error{Faults: faults}
	}

	o.Items = lineItems
	o.TotalAmount = total

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, customer_name, customer_email, payment_method,
			payment_status, status, total_amount, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$8)
	`, o.ID, o.CustomerName, o.CustomerEmail, o.PaymentMethod,
		o.PaymentStatus, o.Status, o.TotalAmount, o.CreatedAt)
	if err != nil {
		return err
	}

	for _, item := range o.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (
				id, order_id, unit_id, unit_name, quantity, unit_price,
				subtotal, booking_starts_at, booking_ends_at, reservation_id
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		`, item.ID, item.OrderID, item.UnitID, item.UnitName, item.Quantity,
			item.UnitPrice, item.Subtotal, item.BookingStartsAt, item.BookingEndsAt,
			item.ReservationID)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	log.Info("checkout committed", zap.Int64("total_amount", o.TotalAmount))
	return nil
}

func (r *repository) GetOrder(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	o, err := scanOrder(ctx, r.db, orderID, false)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, unit_id, unit_name, quantity, unit_price,
		       subtotal, booking_starts_at, booking_ends_at, reservation_id
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item LineItem
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.UnitID, &item.UnitName,
			&item.Quantity, &item.UnitPrice, &item.Subtotal,
			&item.BookingStartsAt, &item.BookingEndsAt, &item.ReservationID,
		); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return o, nil
}

// MutateOrderTx locks the order row, runs apply (a state machine method)
// and persists the result. The payment_status guard on the update keeps a
// lost write impossible even if the row lock is ever weakened.
func (r *repository) MutateOrderTx(ctx context.Context, orderID uuid.UUID, apply func(*Order) error) (*Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	o, err := scanOrder(ctx, tx, orderID, true)
	if err != nil {
		return nil, err
	}

	prevPayment := o.PaymentStatus
	if err := apply(o); err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET payment_status = $1, status = $2, paid_at = $3, updated_at = $4
		WHERE id = $5 AND payment_status = $6
	`, o.PaymentStatus, o.Status, o.PaidAt, o.UpdatedAt, o.ID, prevPayment)
	if err != nil {
		return nil, err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return nil, fmt.Errorf("order %s changed concurrently", o.ID)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	return o, nil
}

// CancelOrderTx is the single cancellation implementation shared by
// user-initiated cancels, operator actions and the sweeper. It releases
// every still-reserved line item in the same transaction as the status
// flip, so no observer ever sees a half-applied cancellation.
func (r *repository) CancelOrderTx(ctx context.Context, orderID uuid.UUID) (bool, int, error) {
	log := logger.FromCtx(ctx).With(zap.String("order_id", orderID.String()))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, 0, err
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	o, err := scanOrder(ctx, tx, orderID, true)
	if err != nil {
		return false, 0, err
	}

	changed, err := o.Cancel(r.clk.Now())
	if err != nil {
		return false, 0, err
	}
	if !changed {
		// Already cancelled; restoration ran when it happened.
		return false, 0, nil
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT reservation_id FROM order_items
		WHERE order_id = $1 AND reservation_id IS NOT NULL
	`, orderID)
	if err != nil {
		return false, 0, err
	}
	var reservationIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return false, 0, err
		}
		reservationIDs = append(reservationIDs, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return false, 0, err
	}
	rows.Close()

	restored := 0
	for _, resID := range reservationIDs {
		released, err := r.ledger.Release(ctx, tx, resID)
		if err != nil {
			return false, 0, err
		}
		if released {
			restored++
		}
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status <> 'cancelled'
	`, o.Status, o.UpdatedAt, o.ID)
	if err != nil {
		return false, 0, err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		// A concurrent cancel won the race; its transaction restored.
		return false, 0, nil
	}

	if err := tx.Commit(); err != nil {
		return false, 0, err
	}
	committed = true

	log.Info("order cancelled", zap.Int("restored_items", restored))
	return true, restored, nil
}

// RestoreDueItemsTx releases every reservation whose booking window has
// ended, in one transaction. A single failed release rolls back the whole
// batch; the next sweep retries it.
func (r *repository) RestoreDueItemsTx(ctx context.Context, now time.Time) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	rows, err := tx.QueryContext(ctx, `
		SELECT id FROM capacity_reservations
		WHERE status = 'reserved' AND ends_at IS NOT NULL AND ends_at <= $1
		ORDER BY created_at
		FOR UPDATE
	`, now)
	if err != nil {
		return 0, err
	}
	var due []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		due = append(due, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, err
	}
	rows.Close()

	restored := 0
	for _, id := range due {
		released, err := r.ledger.Release(ctx, tx, id)
		if err != nil {
			return 0, fmt.Errorf("restore reservation %s: %w", id, err)
		}
		if released {
			restored++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true

	return restored, nil
}

func (r *repository) ListExpiredUnpaid(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id FROM orders
		WHERE payment_status = 'unpaid' AND status = 'pending' AND created_at <= $1
		ORDER BY created_at
		LIMIT $2
	`, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanOrder(ctx context.Context, q capacity.Querier, orderID uuid.UUID, forUpdate bool) (*Order, error) {
	query := `
		SELECT id, customer_name, customer_email, payment_method,
		       payment_status, status, total_amount, created_at, paid_at, updated_at
		FROM orders
		WHERE id = $1`
	if forUpdate {
		query += `
		FOR UPDATE`
	}

	var o Order
	err := q.QueryRowContext(ctx, query, orderID).Scan(
		&o.ID, &o.CustomerName, &o.CustomerEmail, &o.PaymentMethod,
		&o.PaymentStatus, &o.Status, &o.TotalAmount, &o.CreatedAt,
		&o.PaidAt, &o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}
