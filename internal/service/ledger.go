package service

import (
    "context"
    "time"

    "github.com/google/uuid"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/auditorium-seat-reservation/internal/clock"
    "github.com/iliyamo/auditorium-seat-reservation/internal/errs"
    "github.com/iliyamo/auditorium-seat-reservation/internal/model"
    "github.com/iliyamo/auditorium-seat-reservation/internal/repository"
)

// DefaultHoldTimeout is how long a pending hold blocks a seat before
// another claim may take it over.
const DefaultHoldTimeout = 2 * time.Minute

// Claim is the result of a successful seat claim.  BookingID is minted by
// the ledger and must be used for the booking that follows.
type Claim struct {
    BookingID string
    Show      *model.Show
    Seat      model.SeatCode
    StudentID string
    ClaimedAt time.Time
}

// SeatLedger owns per-seat state and occupancy history.
type SeatLedger struct {
    shows       ShowCatalog
    store       LedgerStore
    clock       clock.Clock
    holdTimeout time.Duration
    logger      *logrus.Logger
}

func NewSeatLedger(shows ShowCatalog, store LedgerStore, clk clock.Clock, holdTimeout time.Duration, logger *logrus.Logger) *SeatLedger {
    if holdTimeout <= 0 {
        holdTimeout = DefaultHoldTimeout
    }
    return &SeatLedger{shows: shows, store: store, clock: clk, holdTimeout: holdTimeout, logger: logger}
}

// HoldTimeout returns the configured hold timeout.
func (l *SeatLedger) HoldTimeout() time.Duration { return l.holdTimeout }

// ClaimSeat atomically moves a seat to held for a new booking.  Checks run
// in order: unknown show or seat, gender restriction, permanent damage,
// then the compare-and-set itself.  Of two concurrent claims on one seat
// exactly one succeeds; the loser gets seat_taken.
func (l *SeatLedger) ClaimSeat(ctx context.Context, showID string, seat model.SeatCode, student model.Student) (*Claim, error) {
    show, err := l.resolve(ctx, showID, seat)
    if err != nil {
        return nil, err
    }
    if !show.Admits(student.Gender) {
        return nil, seatUnavailable(ReasonGenderMismatch)
    }
    if show.IsDamaged(seat) {
        return nil, seatUnavailable(ReasonSeatDamaged)
    }

    now := stamp(l.clock)
    c := &Claim{
        BookingID: uuid.NewString(),
        Show:      show,
        Seat:      seat,
        StudentID: student.ID,
        ClaimedAt: now,
    }
    err = l.store.Claim(ctx, repository.ClaimParams{
        ShowID:      showID,
        Seat:        seat,
        BookingID:   c.BookingID,
        StudentID:   student.ID,
        Now:         now,
        StaleBefore: now.Add(-l.holdTimeout),
    })
    switch {
    case errs.Is(err, repository.ErrConflict):
        return nil, seatUnavailable(ReasonSeatTaken)
    case err != nil:
        l.logger.WithContext(ctx).WithError(err).WithFields(logrus.Fields{
            "show_id": showID, "seat": seat.String(),
        }).Error("claim seat")
        return nil, newError(KindInternal, "claim seat", err)
    }
    return c, nil
}

// OccupySeat turns bookingID's hold into an occupation.  HoldExpired is
// returned when the hold was reclaimed in the meantime.
func (l *SeatLedger) OccupySeat(ctx context.Context, showID string, seat model.SeatCode, bookingID string) error {
    err := l.store.Occupy(ctx, showID, seat, bookingID)
    switch {
    case errs.Is(err, repository.ErrConflict):
        return newError(KindHoldExpired, "hold no longer owned by booking "+bookingID, nil)
    case err != nil:
        return newError(KindInternal, "occupy seat", err)
    }
    return nil
}

// ReleaseSeat frees the seat when bookingID still owns it and closes that
// booking's occupancy.  NotFound is returned otherwise.
func (l *SeatLedger) ReleaseSeat(ctx context.Context, showID string, seat model.SeatCode, bookingID string) error {
    err := l.store.Release(ctx, showID, seat, bookingID, stamp(l.clock))
    switch {
    case errs.Is(err, repository.ErrNotFound):
        return newError(KindNotFound, "seat not held by booking "+bookingID, nil)
    case err != nil:
        return newError(KindInternal, "release seat", err)
    }
    return nil
}

// Entry returns the ledger entry of a seat including its full history.
func (l *SeatLedger) Entry(ctx context.Context, showID string, seat model.SeatCode) (*model.SeatLedgerEntry, error) {
    if _, err := l.resolve(ctx, showID, seat); err != nil {
        return nil, err
    }
    e, err := l.store.Get(ctx, showID, seat)
    if err != nil {
        return nil, newError(KindInternal, "load ledger entry", err)
    }
    return e, nil
}

func (l *SeatLedger) resolve(ctx context.Context, showID string, seat model.SeatCode) (*model.Show, error) {
    show, err := l.shows.GetShow(ctx, showID)
    switch {
    case errs.Is(err, repository.ErrNotFound):
        return nil, newError(KindNotFound, "show "+showID+" not found", nil)
    case err != nil:
        return nil, newError(KindInternal, "load show", err)
    }
    if !show.HasSeat(seat) {
        return nil, newError(KindNotFound, "seat "+seat.String()+" does not exist in show "+showID, nil)
    }
    return show, nil
}

// stamp truncates to millisecond precision, the resolution stored in MySQL
// and in ticket tokens.
func stamp(c clock.Clock) time.Time {
    return c.Now().UTC().Truncate(time.Millisecond)
}
