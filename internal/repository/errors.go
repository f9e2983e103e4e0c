// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow the service layer to
// distinguish between different failure scenarios.  ErrNotFound means the
// row does not exist or a guarded release did not match, while ErrConflict
// signals that a conditional update found the row in a state other than the
// one it required (e.g. claiming a seat that is already held).
package repository

import "errors"

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a compare-and-set update matched zero rows
// because the current state no longer satisfies its guard.
var ErrConflict = errors.New("conflict")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate this into an HTTP 403.
var ErrForbidden = errors.New("forbidden")
