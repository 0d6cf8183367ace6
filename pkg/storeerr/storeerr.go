// Package storeerr defines the closed set of error kinds the storage layer
// may surface. Callers switch on the kind instead of inspecting driver
// error strings.
package storeerr

import (
	"errors"
	"fmt"
)

// Kind classifies a storage failure.
type Kind int

const (
	// KindUnavailable marks connectivity or timeout failures. Retryable.
	KindUnavailable Kind = iota
	// KindConstraintViolation marks a unique/check constraint breach.
	// Expected under races; resolved by re-fetch, never user-visible.
	KindConstraintViolation
	// KindNotFound marks a referenced row that does not exist.
	KindNotFound
	// KindInternal marks any other storage failure. Not retryable.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindConstraintViolation:
		return "constraint_violation"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error is a storage failure tagged with its kind.
type Error struct {
	Kind Kind
	Op   string // e.g. "insert receipt"
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("store %s: %s: %v", e.Kind, e.Op, e.Err)
	}
	return fmt.Sprintf("store %s: %s", e.Kind, e.Op)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a storeerr.Error.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the kind from err, or KindInternal if err is not a
// storage error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == kind
}
