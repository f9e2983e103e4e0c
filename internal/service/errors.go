package service

import (
    "errors"
    "fmt"
)

// Kind classifies service failures.  The HTTP layer maps each kind to a
// status code.
type Kind string

const (
    KindSeatUnavailable   Kind = "seat_unavailable"
    KindHoldExpired       Kind = "hold_expired"
    KindIssuanceFailed    Kind = "issuance_failed"
    KindTokenInvalid      Kind = "token_invalid"
    KindTokenExpired      Kind = "token_expired"
    KindTicketAlreadyUsed Kind = "ticket_already_used"
    KindTicketCancelled   Kind = "ticket_cancelled"
    KindNotFound          Kind = "not_found"
    KindForbidden         Kind = "forbidden"
    KindInternal          Kind = "internal"
)

// Reasons attached to KindSeatUnavailable.
const (
    ReasonSeatTaken      = "seat_taken"
    ReasonGenderMismatch = "gender_mismatch"
    ReasonSeatDamaged    = "seat_damaged"
)

// Error is the error type returned by every service operation.
type Error struct {
    Kind   Kind
    Reason string
    msg    string
    err    error
}

func (e *Error) Error() string {
    if e.err != nil {
        return fmt.Sprintf("%s: %s: %v", e.Kind, e.msg, e.err)
    }
    return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

func (e *Error) Unwrap() error { return e.err }

func newError(kind Kind, msg string, cause error) *Error {
    return &Error{Kind: kind, msg: msg, err: cause}
}

func seatUnavailable(reason string) *Error {
    return &Error{Kind: KindSeatUnavailable, Reason: reason, msg: "seat unavailable (" + reason + ")"}
}

// IsKind reports whether err is a service Error of the given kind.
func IsKind(err error, kind Kind) bool {
    var e *Error
    return errors.As(err, &e) && e.Kind == kind
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
    var e *Error
    if errors.As(err, &e) {
        return e.Kind
    }
    return KindInternal
}

// ReasonOf returns the reason attached to err, if any.
func ReasonOf(err error) string {
    var e *Error
    if errors.As(err, &e) {
        return e.Reason
    }
    return ""
}
