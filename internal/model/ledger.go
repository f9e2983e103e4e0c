package model

import "time"

// SeatState is the availability of a single (show, seat) ledger entry.
type SeatState string

const (
    SeatFree     SeatState = "free"
    SeatHeld     SeatState = "held"
    SeatOccupied SeatState = "occupied"
)

// Occupancy is one element of a seat's occupancy history.  ReleasedAt is
// nil while the holder still owns the seat.
type Occupancy struct {
    BookingID  string     `json:"booking_id"`  // seat_occupancy.booking_id
    StudentID  string     `json:"student_id"`  // seat_occupancy.student_id
    ClaimedAt  time.Time  `json:"claimed_at"`  // seat_occupancy.claimed_at
    ReleasedAt *time.Time `json:"released_at"` // seat_occupancy.released_at (nullable)
}

// Covers reports whether t falls in the occupancy.  A released occupancy
// covers [ClaimedAt, ReleasedAt); an open one covers [ClaimedAt, now], so
// the current holder owns the present instant.
func (o Occupancy) Covers(t, now time.Time) bool {
    if t.Before(o.ClaimedAt) {
        return false
    }
    if o.ReleasedAt != nil {
        return t.Before(*o.ReleasedAt)
    }
    return !t.After(now)
}

// SeatLedgerEntry is the authoritative state of one seat for one show.
//
// Fields:
//  ShowID           – show the seat belongs to.
//  Seat             – seat coordinate.
//  State            – free, held or occupied.
//  CurrentBookingID – booking holding the seat; empty when free.
//  HeldAt           – when the current hold was taken (nil when free).
//  Version          – bumped on every successful transition.
//  History          – occupancy history ordered by ClaimedAt.
//
// At most one History element is open, and when State is not free it
// belongs to CurrentBookingID.
type SeatLedgerEntry struct {
    ShowID           string      `json:"show_id"`            // seat_ledger.show_id
    Seat             SeatCode    `json:"seat"`               // seat_ledger.seat_code
    State            SeatState   `json:"state"`              // seat_ledger.state
    CurrentBookingID string      `json:"current_booking_id"` // seat_ledger.current_booking_id (nullable)
    HeldAt           *time.Time  `json:"held_at"`            // seat_ledger.held_at (nullable)
    Version          uint64      `json:"version"`            // seat_ledger.version
    History          []Occupancy `json:"history"`
}

// OpenOccupancy returns the history element that has not been released, or
// nil when the seat is free.
func (e *SeatLedgerEntry) OpenOccupancy() *Occupancy {
    for i := range e.History {
        if e.History[i].ReleasedAt == nil {
            return &e.History[i]
        }
    }
    return nil
}
