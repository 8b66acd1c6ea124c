package domain

import (
	"errors"
	"time"
)

// ErrInvalidInput is returned when a query is rejected before reaching the core.
var ErrInvalidInput = errors.New("invalid input")

// InternalFailure reports an unexpected failure during orchestration.
// Error() is deliberately generic; Cause carries the detail for logs.
type InternalFailure struct {
	Elapsed time.Duration
	Cause   error
}

func (e *InternalFailure) Error() string {
	return "internal failure while processing query"
}

// Unwrap exposes the underlying cause.
func (e *InternalFailure) Unwrap() error {
	return e.Cause
}
