package errs

import "errors"

// Common sentinel errors for cross-layer signaling.
var (
	ErrNotFound = errors.New("not_found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid")
	// ErrUnprocessable is used for semantic validation failures (HTTP 422)
	ErrUnprocessable = errors.New("unprocessable")
	// ErrDuplicateDate indicates the owner already has a snapshot for that calendar day
	ErrDuplicateDate = errors.New("duplicate_snapshot_date")
	// ErrIdempotencyMismatch indicates an Idempotency-Key reused with a different request
	ErrIdempotencyMismatch = errors.New("idempotency_mismatch")
)
