package capacity

import (
	"time"

	"github.com/google/uuid"
)

type UnitKind string

const (
	KindStocked  UnitKind = "stocked"
	KindBookable UnitKind = "bookable"
)

type ReservationStatus string

const (
	StatusReserved ReservationStatus = "reserved"
	StatusReleased ReservationStatus = "released"
)

// Reservation is one claim on a unit's capacity. For stocked units the
// claim is a quantity already subtracted from the counter; for bookable
// units it is a time range that excludes overlapping claims. Status moves
// reserved -> released exactly once.
type Reservation struct {
	ID         uuid.UUID
	UnitID     uuid.UUID
	Kind       UnitKind
	Quantity   int
	StartsAt   *time.Time
	EndsAt     *time.Time
	Status     ReservationStatus
	CreatedAt  time.Time
	ReleasedAt *time.Time
}

type ReserveRequest struct {
	UnitID   uuid.UUID
	Quantity int
	StartsAt *time.Time
	EndsAt   *time.Time
}
