// Package service implements the reservation engine: the seat ledger, the
// booking manager, ticket issuance and validation, and damage attribution.
// Services depend on the storage contracts below so the MySQL repositories
// and the in-memory store are interchangeable.
package service

import (
    "context"
    "time"

    "github.com/iliyamo/auditorium-seat-reservation/internal/model"
    "github.com/iliyamo/auditorium-seat-reservation/internal/repository"
)

// ShowCatalog reads immutable show records.
type ShowCatalog interface {
    GetShow(ctx context.Context, showID string) (*model.Show, error)
}

// LedgerStore persists seat ledger entries with compare-and-set semantics.
type LedgerStore interface {
    Claim(ctx context.Context, p repository.ClaimParams) error
    Occupy(ctx context.Context, showID string, seat model.SeatCode, bookingID string) error
    Release(ctx context.Context, showID string, seat model.SeatCode, bookingID string, now time.Time) error
    Get(ctx context.Context, showID string, seat model.SeatCode) (*model.SeatLedgerEntry, error)
}

// BookingStore persists bookings.  Transition is conditional on the current
// status.
type BookingStore interface {
    Create(ctx context.Context, b *model.Booking) error
    Get(ctx context.Context, id string) (*model.Booking, error)
    Transition(ctx context.Context, id string, from []model.BookingStatus, to model.BookingStatus, at time.Time) error
    ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]model.Booking, error)
}

// TicketStore persists tickets.  MarkUsed and Cancel only succeed from the
// issued status.
type TicketStore interface {
    Create(ctx context.Context, t *model.Ticket) error
    Get(ctx context.Context, id string) (*model.Ticket, error)
    GetByBooking(ctx context.Context, bookingID string) (*model.Ticket, error)
    MarkUsed(ctx context.Context, id string, at time.Time) error
    Cancel(ctx context.Context, id string, at time.Time) error
}

var (
    _ ShowCatalog  = (*repository.ShowRepo)(nil)
    _ LedgerStore  = (*repository.SeatLedgerRepo)(nil)
    _ BookingStore = (*repository.BookingRepo)(nil)
    _ TicketStore  = (*repository.TicketRepo)(nil)
)
