package catalog

import (
	"time"

	"kedairuang-be/internal/capacity"

	"github.com/google/uuid"
)

// SellableUnit is anything the shop takes money for. Stocked units carry
// a counter when ManageStock is set; bookable units have no counter and
// are guarded by reservation windows instead.
type SellableUnit struct {
	ID            uuid.UUID         `json:"id"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	Kind          capacity.UnitKind `json:"kind"`
	Price         int64             `json:"price"`
	ManageStock   bool              `json:"manage_stock"`
	StockQuantity int               `json:"stock_quantity"`
	DeletedAt     *time.Time        `json:"deleted_at,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

type NewUnit struct {
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	Kind          capacity.UnitKind `json:"kind"`
	Price         int64             `json:"price"`
	ManageStock   bool              `json:"manage_stock"`
	StockQuantity int               `json:"stock_quantity"`
}

type ListOptions struct {
	Kind           *capacity.UnitKind
	IncludeDeleted bool
	Limit          int
	Offset         int
}
