package catalog

import (
	"context"
	"database/sql"
	"errors"

	"kedairuang-be/internal/capacity"
	"kedairuang-be/internal/clock"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*SellableUnit, error)
	List(ctx context.Context, opts ListOptions) ([]SellableUnit, error)
	Create(ctx context.Context, input NewUnit) (*SellableUnit, error)
	SoftDeleteTx(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db  *sql.DB
	clk clock.Clock
}

func NewRepository(db *sql.DB, clk clock.Clock) Repository {
	return &repository{db: db, clk: clk}
}

const unitColumns = `id, name, description, kind, price, manage_stock, stock_quantity, deleted_at, created_at, updated_at`

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*SellableUnit, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+unitColumns+` FROM sellable_units WHERE id = $1`,
		id,
	)

	u, err := scanUnit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUnitNotFound
	}
	return u, err
}

func (r *repository) List(ctx context.Context, opts ListOptions) ([]SellableUnit, error) {
	query := `SELECT ` + unitColumns + ` FROM sellable_units WHERE 1=1`
	args := []any{}

	if !opts.IncludeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	if opts.Kind != nil {
		args = append(args, *opts.Kind)
		query += ` AND kind = $1`
	}

	query += ` ORDER BY created_at DESC`
	if opts.Limit > 0 {
		args = append(args, opts.Limit, opts.Offset)
		if opts.Kind != nil {
			query += ` LIMIT $2 OFFSET $3`
		} else {
			query += ` LIMIT $1 OFFSET $2`
		}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []SellableUnit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, *u)
	}

	return units, rows.Err()
}

func (r *repository) Create(ctx context.Context, input NewUnit) (*SellableUnit, error) {
	now := r.clk.Now()
	u := &SellableUnit{
		ID:            uuid.New(),
		Name:          input.Name,
		Description:   input.Description,
		Kind:          input.Kind,
		Price:         input.Price,
		ManageStock:   input.ManageStock,
		StockQuantity: input.StockQuantity,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sellable_units
			(id, name, description, kind, price, manage_stock, stock_quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
		u.ID, u.Name, u.Description, u.Kind, u.Price, u.ManageStock, u.StockQuantity, now,
	)
	if err != nil {
		return nil, err
	}

	return u, nil
}

// SoftDeleteTx retires a unit from sale and detaches it from historical
// order lines in the same transaction. Line items keep their snapshotted
// name and price, so past orders stay readable after the unit is gone.
func (r *repository) SoftDeleteTx(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE sellable_units SET deleted_at = $1, updated_at = $1 WHERE id = $2 AND deleted_at IS NULL`,
		r.clk.Now(), id,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUnitNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE order_items SET unit_id = NULL WHERE unit_id = $1`,
		id,
	); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUnit(row rowScanner) (*SellableUnit, error) {
	var u SellableUnit
	var kind string
	err := row.Scan(
		&u.ID, &u.Name, &u.Description, &kind, &u.Price,
		&u.ManageStock, &u.StockQuantity, &u.DeletedAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Kind = capacity.UnitKind(kind)
	return &u, nil
}
