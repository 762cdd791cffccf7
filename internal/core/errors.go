package core

import (
	"errors"
	"fmt"
)

// Registry error taxonomy. Every registry call resolves to success or exactly
// one of these kinds; callers match with errors.Is.
var (
	// ErrConflict is a registry-reported uniqueness violation
	// (duplicate consumer username or credential name).
	ErrConflict = errors.New("registry conflict")

	// ErrNotFound is returned when the addressed record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable means the registry could not be reached at all
	// (connection refused, DNS failure, ...).
	ErrUnavailable = errors.New("registry unavailable")

	// ErrTimeout means the client-side deadline was exceeded.
	ErrTimeout = errors.New("registry timeout")

	// ErrNameExhausted is raised when credential issuance still conflicts
	// after the bounded rename retries.
	ErrNameExhausted = errors.New("credential name exhausted")
)

// UnknownError wraps any registry response that does not map onto the
// taxonomy above, keeping the raw status and body for operator diagnostics.
type UnknownError struct {
	Operation string
	Status    int
	Body      string
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("registry error during %s: status %d: %s", e.Operation, e.Status, e.Body)
}
