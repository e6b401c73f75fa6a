package core

import "errors"

var (
	// ErrPersistence means the message could not be durably recorded; delivery must not proceed.
	ErrPersistence = errors.New("persistence failure")

	// ErrDispatch wraps notification provider errors. Logged only.
	ErrDispatch = errors.New("dispatch failure")

	// ErrMalformedPayload marks inbound events that fail decoding or validation,
	// and outbound events that cannot be encoded.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)
