package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	// ErrRetryable marks a unit of work that lost a serialization race or
	// deadlock; running it again may succeed.
	ErrRetryable = errors.New("retryable")
)
