package memstore

import (
    "context"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/auditorium-seat-reservation/internal/model"
    "github.com/iliyamo/auditorium-seat-reservation/internal/repository"
)

var now = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func TestLedgerGetReturnsCopies(t *testing.T) {
    l := NewSeatLedger()
    ctx := context.Background()
    seat := model.MustSeat("A-1")
    require.NoError(t, l.Claim(ctx, repository.ClaimParams{
        ShowID: "s", Seat: seat, BookingID: "b1", StudentID: "u1", Now: now, StaleBefore: now.Add(-time.Minute),
    }))

    e, err := l.Get(ctx, "s", seat)
    require.NoError(t, err)
    e.History[0].BookingID = "mutated"
    e.State = model.SeatFree

    again, err := l.Get(ctx, "s", seat)
    require.NoError(t, err)
    assert.Equal(t, "b1", again.History[0].BookingID)
    assert.Equal(t, model.SeatHeld, again.State)
    assert.EqualValues(t, 1, again.Version)
}

func TestLedgerOccupyGuard(t *testing.T) {
    l := NewSeatLedger()
    ctx := context.Background()
    seat := model.MustSeat("B-2")
    assert.ErrorIs(t, l.Occupy(ctx, "s", seat, "b1"), repository.ErrConflict)

    require.NoError(t, l.Claim(ctx, repository.ClaimParams{ShowID: "s", Seat: seat, BookingID: "b1", Now: now, StaleBefore: now}))
    assert.ErrorIs(t, l.Occupy(ctx, "s", seat, "b2"), repository.ErrConflict)
    require.NoError(t, l.Occupy(ctx, "s", seat, "b1"))
    assert.ErrorIs(t, l.Occupy(ctx, "s", seat, "b1"), repository.ErrConflict)

    // Occupied seats are never claimable, however old.
    err := l.Claim(ctx, repository.ClaimParams{ShowID: "s", Seat: seat, BookingID: "b3", Now: now.Add(time.Hour), StaleBefore: now.Add(time.Hour)})
    assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestBookingTransition(t *testing.T) {
    s := NewBookingStore()
    ctx := context.Background()
    require.NoError(t, s.Create(ctx, &model.Booking{ID: "b1", Status: model.BookingPending, CreatedAt: now}))
    assert.ErrorIs(t, s.Create(ctx, &model.Booking{ID: "b1"}), repository.ErrConflict)

    pending := []model.BookingStatus{model.BookingPending}
    require.NoError(t, s.Transition(ctx, "b1", pending, model.BookingConfirmed, now.Add(time.Second)))
    assert.ErrorIs(t, s.Transition(ctx, "b1", pending, model.BookingCancelled, now), repository.ErrConflict)
    assert.ErrorIs(t, s.Transition(ctx, "nope", pending, model.BookingCancelled, now), repository.ErrNotFound)

    b, err := s.Get(ctx, "b1")
    require.NoError(t, err)
    assert.Equal(t, model.BookingConfirmed, b.Status)
    assert.Equal(t, now.Add(time.Second), b.UpdatedAt)
}

func TestListPendingBefore(t *testing.T) {
    s := NewBookingStore()
    ctx := context.Background()
    for i, id := range []string{"b3", "b1", "b2"} {
        require.NoError(t, s.Create(ctx, &model.Booking{ID: id, Status: model.BookingPending, CreatedAt: now.Add(time.Duration(3-i) * time.Minute)}))
    }
    require.NoError(t, s.Create(ctx, &model.Booking{ID: "done", Status: model.BookingConfirmed, CreatedAt: now}))

    got, err := s.ListPendingBefore(ctx, now.Add(2*time.Minute), 10)
    require.NoError(t, err)
    ids := make([]string, len(got))
    for i, b := range got {
        ids[i] = b.ID
    }
    assert.Equal(t, []string{"b2", "b1"}, ids)

    got, err = s.ListPendingBefore(ctx, now.Add(time.Hour), 1)
    require.NoError(t, err)
    require.Len(t, got, 1)
    assert.Equal(t, "b2", got[0].ID)
}

func TestTicketSingleUse(t *testing.T) {
    s := NewTicketStore()
    ctx := context.Background()
    require.NoError(t, s.Create(ctx, &model.Ticket{ID: "t1", BookingID: "b1", Status: model.TicketIssued}))
    assert.ErrorIs(t, s.Create(ctx, &model.Ticket{ID: "t2", BookingID: "b1"}), repository.ErrConflict)

    require.NoError(t, s.MarkUsed(ctx, "t1", now))
    assert.ErrorIs(t, s.MarkUsed(ctx, "t1", now), repository.ErrConflict)
    assert.ErrorIs(t, s.Cancel(ctx, "t1", now), repository.ErrConflict)
    assert.ErrorIs(t, s.MarkUsed(ctx, "t9", now), repository.ErrNotFound)

    tk, err := s.GetByBooking(ctx, "b1")
    require.NoError(t, err)
    assert.Equal(t, model.TicketUsed, tk.Status)
    require.NotNil(t, tk.UsedAt)
    assert.Nil(t, tk.CancelledAt)
}

func TestLedgerReadsDoNotAllocateSlots(t *testing.T) {
    l := NewSeatLedger()
    ctx := context.Background()
    seat := model.MustSeat("C-3")

    e, err := l.Get(ctx, "s", seat)
    require.NoError(t, err)
    assert.Equal(t, model.SeatFree, e.State)
    assert.Empty(t, e.History)
    assert.NotNil(t, e.History)

    assert.ErrorIs(t, l.Occupy(ctx, "s", seat, "b1"), repository.ErrConflict)
    assert.ErrorIs(t, l.Release(ctx, "s", seat, "b1", now), repository.ErrNotFound)

    slots := 0
    l.slots.Range(func(_, _ any) bool {
        slots++
        return true
    })
    assert.Zero(t, slots)
}
