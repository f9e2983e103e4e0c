package model

import "time"

// TicketStatus is the lifecycle state of a ticket.  used and cancelled are
// terminal.
type TicketStatus string

const (
    TicketIssued    TicketStatus = "issued"
    TicketUsed      TicketStatus = "used"
    TicketCancelled TicketStatus = "cancelled"
)

// Ticket is the signed admission credential for exactly one booking.
// UsedAt is set iff Status is used.
type Ticket struct {
    ID          string       `json:"id"`           // tickets.id
    BookingID   string       `json:"booking_id"`   // tickets.booking_id
    Token       string       `json:"token"`        // tickets.token
    Status      TicketStatus `json:"status"`       // tickets.status
    IssuedAt    time.Time    `json:"issued_at"`    // tickets.issued_at
    UsedAt      *time.Time   `json:"used_at"`      // tickets.used_at (nullable)
    ExpiresAt   time.Time    `json:"expires_at"`   // tickets.expires_at
    CancelledAt *time.Time   `json:"cancelled_at"` // tickets.cancelled_at (nullable)
}
