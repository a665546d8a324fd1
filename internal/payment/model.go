package payment

// Notification is the asynchronous payment callback payload. The gateway
// signs it with SHA-512 over order_id + status_code + gross_amount + the
// server key; nothing in it is trusted before the signature checks out.
type Notification struct {
	OrderID     string `json:"order_id"`
	StatusCode  string `json:"status_code"`
	GrossAmount string `json:"gross_amount"`
	Signature   string `json:"signature"`
}

// Gateway status vocabulary.
const (
	StatusCapture       = "capture"
	StatusSettlement    = "settlement"
	StatusPending       = "pending"
	StatusDeny          = "deny"
	StatusCancel        = "cancel"
	StatusExpire        = "expire"
	StatusRefund        = "refund"
	StatusPartialRefund = "partial_refund"
)

type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomeIgnored Outcome = "ignored"
)
