package order

import (
	"time"

	"github.com/google/uuid"
)

type PaymentMethod string

const (
	MethodGateway            PaymentMethod = "gateway"
	MethodManualQRIS         PaymentMethod = "manual_qris"
	MethodManualBankTransfer PaymentMethod = "manual_bank_transfer"
	MethodManualCash         PaymentMethod = "manual_cash"
)

// Manual reports whether the method settles outside the gateway and
// therefore needs an explicit verification step after payment.
func (m PaymentMethod) Manual() bool {
	return m == MethodManualQRIS || m == MethodManualBankTransfer || m == MethodManualCash
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodGateway, MethodManualQRIS, MethodManualBankTransfer, MethodManualCash:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentVerified PaymentStatus = "verified"
	PaymentRefunded PaymentStatus = "refunded"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

type Order struct {
	ID            uuid.UUID
	CustomerName  string
	CustomerEmail string
	PaymentMethod PaymentMethod
	PaymentStatus PaymentStatus
	Status        Status
	TotalAmount   int64
	CreatedAt     time.Time
	PaidAt        *time.Time
	UpdatedAt     time.Time
	Items         []LineItem
}

// LineItem keeps a descriptive snapshot of what was bought; UnitID goes
// nil when the sellable unit is later soft-deleted, the snapshot stays.
// ReservationID points at the capacity claim made for this item; nil
// means no capacity was ever reserved (unmanageable paths at creation).
type LineItem struct {
	ID              uuid.UUID
	OrderID         uuid.UUID
	UnitID          *uuid.UUID
	UnitName        string
	Quantity        int
	UnitPrice       int64
	Subtotal        int64
	BookingStartsAt *time.Time
	BookingEndsAt   *time.Time
	ReservationID   *uuid.UUID
}
