package memstore

import (
    "context"
    "sync"
    "time"

    "github.com/iliyamo/auditorium-seat-reservation/internal/errs"
    "github.com/iliyamo/auditorium-seat-reservation/internal/model"
    "github.com/iliyamo/auditorium-seat-reservation/internal/repository"
)

// TicketStore is an in-memory ticket table.  byBooking enforces one ticket
// per booking.
type TicketStore struct {
    mu        sync.Mutex
    tickets   map[string]model.Ticket
    byBooking map[string]string
}

func NewTicketStore() *TicketStore {
    return &TicketStore{tickets: map[string]model.Ticket{}, byBooking: map[string]string{}}
}

func (s *TicketStore) Create(_ context.Context, t *model.Ticket) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.tickets[t.ID]; ok {
        return errs.Wrapf(repository.ErrConflict, "ticket %s exists", t.ID)
    }
    if _, ok := s.byBooking[t.BookingID]; ok {
        return errs.Wrapf(repository.ErrConflict, "booking %s already has a ticket", t.BookingID)
    }
    s.tickets[t.ID] = *t
    s.byBooking[t.BookingID] = t.ID
    return nil
}

func (s *TicketStore) Get(_ context.Context, id string) (*model.Ticket, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.get(id)
}

func (s *TicketStore) GetByBooking(_ context.Context, bookingID string) (*model.Ticket, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    id, ok := s.byBooking[bookingID]
    if !ok {
        return nil, repository.ErrNotFound
    }
    return s.get(id)
}

func (s *TicketStore) get(id string) (*model.Ticket, error) {
    t, ok := s.tickets[id]
    if !ok {
        return nil, repository.ErrNotFound
    }
    return &t, nil
}

func (s *TicketStore) MarkUsed(_ context.Context, id string, at time.Time) error {
    return s.leaveIssued(id, func(t *model.Ticket) {
        t.Status = model.TicketUsed
        t.UsedAt = &at
    })
}

func (s *TicketStore) Cancel(_ context.Context, id string, at time.Time) error {
    return s.leaveIssued(id, func(t *model.Ticket) {
        t.Status = model.TicketCancelled
        t.CancelledAt = &at
    })
}

func (s *TicketStore) leaveIssued(id string, apply func(t *model.Ticket)) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    t, ok := s.tickets[id]
    if !ok {
        return repository.ErrNotFound
    }
    if t.Status != model.TicketIssued {
        return repository.ErrConflict
    }
    apply(&t)
    s.tickets[id] = t
    return nil
}
