// Package queue carries ticket lifecycle events over RabbitMQ.  Events are
// informational: publishing failures never affect the operation that
// produced them.
package queue

import (
    "fmt"
    "time"
)

// EventType names a lifecycle transition.
type EventType string

const (
    BookingConfirmed EventType = "booking.confirmed"
    BookingCancelled EventType = "booking.cancelled"
    TicketValidated  EventType = "ticket.validated"
    HoldReclaimed    EventType = "hold.reclaimed"
)

// Event is the JSON payload published to the ticket.lifecycle queue.  It
// contains enough information for downstream consumers to log or notify
// without querying the primary database.
type Event struct {
    Type       EventType `json:"type"`
    BookingID  string    `json:"booking_id"`
    TicketID   string    `json:"ticket_id,omitempty"`
    ShowID     string    `json:"show_id"`
    Seat       string    `json:"seat"`
    StudentID  string    `json:"student_id"`
    OccurredAt time.Time `json:"occurred_at"`
}

// Line renders the event as a single human-friendly audit line.
func (e Event) Line() string {
    ticket := e.TicketID
    if ticket == "" {
        ticket = "-"
    }
    return fmt.Sprintf("[%s] %s | booking_id=%s | ticket_id=%s | show_id=%s | seat=%s | student_id=%s\n",
        e.OccurredAt.UTC().Format(time.RFC3339Nano), e.Type, e.BookingID, ticket, e.ShowID, e.Seat, e.StudentID)
}
