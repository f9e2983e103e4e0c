package model

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
    BookingPending   BookingStatus = "pending"
    BookingConfirmed BookingStatus = "confirmed"
    BookingCancelled BookingStatus = "cancelled"
)

// Booking records one student's intent to sit in one seat of one show.  A
// booking only exists when the seat ledger claim for its seat succeeded.
//
// Fields:
//  ID        – random UUID.
//  ShowID    – show being booked.
//  Seat      – seat being booked.
//  StudentID – student who made the booking.
//  Status    – pending, confirmed or cancelled.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last status change.
type Booking struct {
    ID        string        `json:"id"`         // bookings.id
    ShowID    string        `json:"show_id"`    // bookings.show_id
    Seat      SeatCode      `json:"seat"`       // bookings.seat_code
    StudentID string        `json:"student_id"` // bookings.student_id
    Status    BookingStatus `json:"status"`     // bookings.status
    CreatedAt time.Time     `json:"created_at"` // bookings.created_at
    UpdatedAt time.Time     `json:"updated_at"` // bookings.updated_at
}
