package payment

import "errors"

var (
	ErrInvalidSignature  = errors.New("invalid notification signature")
	ErrMalformedOrderRef = errors.New("malformed order reference")
)
