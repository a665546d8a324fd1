package payment

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// Verifier authenticates payment notifications before they are allowed
// anywhere near order state.
type Verifier struct {
	serverKey string
}

func NewVerifier(serverKey string) *Verifier {
	return &Verifier{serverKey: serverKey}
}

// Signature computes the expected callback signature:
// hex(sha512(order_id || status_code || gross_amount || server_key)).
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

// Verify recomputes the signature and compares in constant time. A
// mismatch returns ErrInvalidSignature; the payload must then be treated
// as untrusted and must not reach the state machine.
func (v *Verifier) Verify(n Notification) error {
	expected := Signature(n.OrderID, n.StatusCode, n.GrossAmount, v.serverKey)
	supplied := strings.ToLower(n.Signature)

	if subtle.ConstantTimeCompare([]byte(expected), []byte(supplied)) != 1 {
		return ErrInvalidSignature
	}
	return nil
}
