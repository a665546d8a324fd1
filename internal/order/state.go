package order

import "time"

// The two status axes are tracked as separate fields but constrained
// jointly. All writes to PaymentStatus, Status and PaidAt go through the
// methods below; repositories only persist what these methods produce.
//
//	payment:     unpaid -> paid -> verified, any non-terminal -> refunded
//	fulfillment: pending -> confirmed | cancelled
//
// cancelled and refunded are terminal. Once payment is verified or
// refunded the fulfillment axis may only move to confirmed or stay.

// Terminal reports whether no further transitions are allowed except the
// idempotent no-ops.
func (o *Order) Terminal() bool {
	return o.Status == StatusCancelled || o.PaymentStatus == PaymentRefunded
}

// Settled reports whether payment is fully resolved for this order's
// method: gateway orders settle at paid, manual methods need verified.
func (o *Order) Settled() bool {
	if o.PaymentMethod.Manual() {
		return o.PaymentStatus == PaymentVerified
	}
	return o.PaymentStatus == PaymentPaid || o.PaymentStatus == PaymentVerified
}

// MarkPaid drives unpaid -> paid. PaidAt is set once, on this edge only,
// and never overwritten. Marking an already paid or verified order is a
// no-op so duplicate gateway notifications stay harmless. Gateway orders
// confirm immediately; manual methods stay pending until verified.
func (o *Order) MarkPaid(now time.Time) error {
	if o.Terminal() {
		return ErrInvalidTransition
	}

	switch o.PaymentStatus {
	case PaymentPaid, PaymentVerified:
		return nil
	case PaymentUnpaid:
		o.PaymentStatus = PaymentPaid
		if o.PaidAt == nil {
			paidAt := now
			o.PaidAt = &paidAt
		}
		if !o.PaymentMethod.Manual() && o.Status == StatusPending {
			o.Status = StatusConfirmed
		}
		o.UpdatedAt = now
		return nil
	default:
		return ErrInvalidTransition
	}
}

// Verify settles a manual-method order after an operator checked the
// payment proof. Requires paid; verifying twice is a no-op.
func (o *Order) Verify(now time.Time) error {
	if o.Terminal() {
		return ErrInvalidTransition
	}
	if !o.PaymentMethod.Manual() {
		return ErrNotManualMethod
	}

	switch o.PaymentStatus {
	case PaymentVerified:
		return nil
	case PaymentPaid:
		o.PaymentStatus = PaymentVerified
		if o.Status == StatusPending {
			o.Status = StatusConfirmed
		}
		o.UpdatedAt = now
		return nil
	default:
		return ErrInvalidTransition
	}
}

// Cancel moves the fulfillment axis to cancelled. Allowed from unpaid and
// paid; once payment is verified or refunded the order can no longer be
// cancelled. Cancelling a cancelled order reports (false, nil): a no-op,
// not an error. The caller owns releasing the line-item reservations in
// the same transaction.
func (o *Order) Cancel(now time.Time) (bool, error) {
	if o.Status == StatusCancelled {
		return false, nil
	}
	if o.PaymentStatus == PaymentVerified || o.PaymentStatus == PaymentRefunded {
		return false, ErrInvalidTransition
	}

	o.Status = StatusCancelled
	o.UpdatedAt = now
	return true, nil
}

// Refund is a financial event only: it never re-triggers capacity
// release. Allowed from any non-terminal state; refunding twice is a
// no-op so duplicate gateway notifications stay harmless.
func (o *Order) Refund(now time.Time) error {
	if o.PaymentStatus == PaymentRefunded {
		return nil
	}
	if o.Status == StatusCancelled {
		return ErrInvalidTransition
	}

	o.PaymentStatus = PaymentRefunded
	o.UpdatedAt = now
	return nil
}

// RevertToUnpaid exists to reject the backward direction explicitly:
// payment status never moves backward, the operator boundary surfaces
// this as a validation-style failure.
func (o *Order) RevertToUnpaid() error {
	if o.PaymentStatus == PaymentUnpaid {
		return nil
	}
	return ErrInvalidTransition
}
