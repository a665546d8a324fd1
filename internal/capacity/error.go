package capacity

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrUnitNotFound        = errors.New("sellable unit not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrMissingTimeRange    = errors.New("bookable unit requires a time range")
	ErrInvalidTimeRange    = errors.New("booking end must be after booking start")
)

type FaultReason string

const (
	FaultInsufficientStock FaultReason = "insufficient_stock"
	FaultSlotConflict      FaultReason = "slot_conflict"
	FaultUnitUnavailable   FaultReason = "unit_unavailable"
)

// Fault describes why a single unit could not be reserved.
type Fault struct {
	UnitID    uuid.UUID
	Reason    FaultReason
	Requested int
	Available int
}

func (f *Fault) Error() string {
	switch f.Reason {
	case FaultInsufficientStock:
		return fmt.Sprintf("unit %s: insufficient stock (requested %d, available %d)", f.UnitID, f.Requested, f.Available)
	case FaultSlotConflict:
		return fmt.Sprintf("unit %s: time slot already booked", f.UnitID)
	default:
		return fmt.Sprintf("unit %s: unavailable", f.UnitID)
	}
}

// AsFault unwraps err into a *Fault when possible.
func AsFault(err error) (*Fault, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// Error is the checkout-facing capacity failure: every item that could
// not be reserved, so the caller can report a precise per-item error.
type Error struct {
	Faults []*Fault
}

func (e *Error) Error() string {
	return fmt.Sprintf("capacity unavailable for %d item(s)", len(e.Faults))
}
