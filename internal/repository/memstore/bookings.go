package memstore

import (
    "context"
    "sort"
    "sync"
    "time"

    "github.com/iliyamo/auditorium-seat-reservation/internal/errs"
    "github.com/iliyamo/auditorium-seat-reservation/internal/model"
    "github.com/iliyamo/auditorium-seat-reservation/internal/repository"
)

// BookingStore is an in-memory booking table.
type BookingStore struct {
    mu       sync.Mutex
    bookings map[string]model.Booking
}

func NewBookingStore() *BookingStore {
    return &BookingStore{bookings: map[string]model.Booking{}}
}

func (s *BookingStore) Create(_ context.Context, b *model.Booking) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.bookings[b.ID]; ok {
        return errs.Wrapf(repository.ErrConflict, "booking %s exists", b.ID)
    }
    s.bookings[b.ID] = *b
    return nil
}

func (s *BookingStore) Get(_ context.Context, id string) (*model.Booking, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    b, ok := s.bookings[id]
    if !ok {
        return nil, repository.ErrNotFound
    }
    return &b, nil
}

func (s *BookingStore) Transition(_ context.Context, id string, from []model.BookingStatus, to model.BookingStatus, at time.Time) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    b, ok := s.bookings[id]
    if !ok {
        return repository.ErrNotFound
    }
    for _, st := range from {
        if b.Status == st {
            b.Status = to
            b.UpdatedAt = at
            s.bookings[id] = b
            return nil
        }
    }
    return repository.ErrConflict
}

func (s *BookingStore) ListPendingBefore(_ context.Context, cutoff time.Time, limit int) ([]model.Booking, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    var out []model.Booking
    for _, b := range s.bookings {
        if b.Status == model.BookingPending && !b.CreatedAt.After(cutoff) {
            out = append(out, b)
        }
    }
    sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
    if limit > 0 && len(out) > limit {
        out = out[:limit]
    }
    return out, nil
}
