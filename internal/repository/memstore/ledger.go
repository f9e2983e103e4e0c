package memstore

import (
    "context"
    "sync"
    "time"

    "github.com/iliyamo/auditorium-seat-reservation/internal/model"
    "github.com/iliyamo/auditorium-seat-reservation/internal/repository"
)

type seatKey struct {
    showID string
    seat   model.SeatCode
}

// seatSlot guards one ledger entry.  Claims on different seats never
// contend.
type seatSlot struct {
    mu    sync.Mutex
    entry model.SeatLedgerEntry
}

// SeatLedger is an in-memory seat ledger with per-seat locking.
type SeatLedger struct {
    slots sync.Map // seatKey -> *seatSlot
}

func NewSeatLedger() *SeatLedger {
    return &SeatLedger{}
}

// lookup returns the slot for a seat that has been claimed at least once.
func (l *SeatLedger) lookup(showID string, seat model.SeatCode) (*seatSlot, bool) {
    v, ok := l.slots.Load(seatKey{showID: showID, seat: seat})
    if !ok {
        return nil, false
    }
    return v.(*seatSlot), true
}

// slot returns the seat's slot, creating it as free.  Only Claim creates
// slots.
func (l *SeatLedger) slot(showID string, seat model.SeatCode) *seatSlot {
    if s, ok := l.lookup(showID, seat); ok {
        return s
    }
    key := seatKey{showID: showID, seat: seat}
    fresh := &seatSlot{entry: model.SeatLedgerEntry{ShowID: showID, Seat: seat, State: model.SeatFree}}
    v, _ := l.slots.LoadOrStore(key, fresh)
    return v.(*seatSlot)
}

func (l *SeatLedger) Claim(_ context.Context, p repository.ClaimParams) error {
    s := l.slot(p.ShowID, p.Seat)
    s.mu.Lock()
    defer s.mu.Unlock()

    e := &s.entry
    switch {
    case e.State == model.SeatFree:
    case e.State == model.SeatHeld && e.HeldAt != nil && !e.HeldAt.After(p.StaleBefore):
    default:
        return repository.ErrConflict
    }
    if open := e.OpenOccupancy(); open != nil {
        released := p.Now
        open.ReleasedAt = &released
    }
    heldAt := p.Now
    e.State = model.SeatHeld
    e.CurrentBookingID = p.BookingID
    e.HeldAt = &heldAt
    e.Version++
    e.History = append(e.History, model.Occupancy{
        BookingID: p.BookingID,
        StudentID: p.StudentID,
        ClaimedAt: p.Now,
    })
    return nil
}

func (l *SeatLedger) Occupy(_ context.Context, showID string, seat model.SeatCode, bookingID string) error {
    s, ok := l.lookup(showID, seat)
    if !ok {
        return repository.ErrConflict
    }
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.entry.State != model.SeatHeld || s.entry.CurrentBookingID != bookingID {
        return repository.ErrConflict
    }
    s.entry.State = model.SeatOccupied
    s.entry.Version++
    return nil
}

func (l *SeatLedger) Release(_ context.Context, showID string, seat model.SeatCode, bookingID string, now time.Time) error {
    s, ok := l.lookup(showID, seat)
    if !ok {
        return repository.ErrNotFound
    }
    s.mu.Lock()
    defer s.mu.Unlock()
    e := &s.entry
    if e.State == model.SeatFree || e.CurrentBookingID != bookingID {
        return repository.ErrNotFound
    }
    for i := range e.History {
        if e.History[i].BookingID == bookingID && e.History[i].ReleasedAt == nil {
            released := now
            e.History[i].ReleasedAt = &released
        }
    }
    e.State = model.SeatFree
    e.CurrentBookingID = ""
    e.HeldAt = nil
    e.Version++
    return nil
}

// Get returns a deep copy of the entry so callers cannot mutate the ledger.
// A seat never claimed reads as free with no history.
func (l *SeatLedger) Get(_ context.Context, showID string, seat model.SeatCode) (*model.SeatLedgerEntry, error) {
    s, ok := l.lookup(showID, seat)
    if !ok {
        return &model.SeatLedgerEntry{ShowID: showID, Seat: seat, State: model.SeatFree, History: []model.Occupancy{}}, nil
    }
    s.mu.Lock()
    defer s.mu.Unlock()
    out := s.entry
    if s.entry.HeldAt != nil {
        h := *s.entry.HeldAt
        out.HeldAt = &h
    }
    out.History = make([]model.Occupancy, len(s.entry.History))
    for i, o := range s.entry.History {
        if o.ReleasedAt != nil {
            r := *o.ReleasedAt
            o.ReleasedAt = &r
        }
        out.History[i] = o
    }
    return &out, nil
}
