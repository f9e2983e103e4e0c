package service

import (
    "context"
    "time"

    "github.com/sirupsen/logrus"

    "github.com/iliyamo/auditorium-seat-reservation/internal/clock"
    "github.com/iliyamo/auditorium-seat-reservation/internal/errs"
    "github.com/iliyamo/auditorium-seat-reservation/internal/model"
    "github.com/iliyamo/auditorium-seat-reservation/internal/queue"
    "github.com/iliyamo/auditorium-seat-reservation/internal/repository"
)

// Reservation is the result of a successful reserve: a confirmed booking
// and its ticket.
type Reservation struct {
    Booking model.Booking
    Ticket  model.Ticket
    QRCode  []byte
}

// CancelResult reports the booking after cancellation and whether it had
// already been cancelled before this call.
type CancelResult struct {
    Booking          model.Booking
    AlreadyCancelled bool
}

// BookingManager orchestrates reserve and cancel across the seat ledger,
// the booking store and the ticket issuer.  It holds no locks of its own;
// every step is a conditional update in storage.
type BookingManager struct {
    ledger   *SeatLedger
    issuer   *TicketIssuer
    bookings BookingStore
    tickets  TicketStore
    events   EventPublisher
    clock    clock.Clock
    logger   *logrus.Logger
}

func NewBookingManager(ledger *SeatLedger, issuer *TicketIssuer, bookings BookingStore, tickets TicketStore, events EventPublisher, clk clock.Clock, logger *logrus.Logger) *BookingManager {
    return &BookingManager{
        ledger:   ledger,
        issuer:   issuer,
        bookings: bookings,
        tickets:  tickets,
        events:   events,
        clock:    clk,
        logger:   logger,
    }
}

// Reserve claims the seat, records a pending booking, issues its ticket,
// occupies the seat and confirms the booking.  A booking exists only if the
// claim succeeded.  If issuance fails the seat is released and the booking
// cancelled; if the hold was reclaimed while issuing, the fresh ticket and
// booking are cancelled and HoldExpired is returned.
func (m *BookingManager) Reserve(ctx context.Context, showID string, seat model.SeatCode, student model.Student) (*Reservation, error) {
    claim, err := m.ledger.ClaimSeat(ctx, showID, seat, student)
    if err != nil {
        return nil, err
    }
    log := m.logger.WithContext(ctx).WithFields(logrus.Fields{
        "booking_id": claim.BookingID,
        "show_id":    showID,
        "seat":       seat.String(),
        "student_id": student.ID,
    })

    b := model.Booking{
        ID:        claim.BookingID,
        ShowID:    showID,
        Seat:      seat,
        StudentID: student.ID,
        Status:    model.BookingPending,
        CreatedAt: claim.ClaimedAt,
        UpdatedAt: claim.ClaimedAt,
    }
    if err := m.bookings.Create(ctx, &b); err != nil {
        log.WithError(err).Error("create booking")
        m.releaseQuietly(ctx, log, b)
        return nil, newError(KindInternal, "create booking", err)
    }

    issued, err := m.issuer.Issue(ctx, b)
    if err != nil {
        log.WithError(err).Warn("issuance failed; compensating")
        m.releaseQuietly(ctx, log, b)
        m.cancelBookingQuietly(ctx, log, b.ID)
        return nil, err
    }

    if err := m.ledger.OccupySeat(ctx, showID, seat, b.ID); err != nil {
        log.WithError(err).Warn("hold lost while issuing")
        m.cancelTicketQuietly(ctx, log, issued.Ticket.ID)
        m.cancelBookingQuietly(ctx, log, b.ID)
        return nil, err
    }

    at := stamp(m.clock)
    err = m.bookings.Transition(ctx, b.ID, []model.BookingStatus{model.BookingPending}, model.BookingConfirmed, at)
    switch {
    case errs.Is(err, repository.ErrConflict):
        // Reclaimed by the sweeper between occupy and confirm.
        log.Warn("booking reclaimed before confirmation")
        m.cancelTicketQuietly(ctx, log, issued.Ticket.ID)
        m.releaseQuietly(ctx, log, b)
        return nil, newError(KindHoldExpired, "booking "+b.ID+" was reclaimed", nil)
    case err != nil:
        log.WithError(err).Error("confirm booking")
        m.cancelTicketQuietly(ctx, log, issued.Ticket.ID)
        m.releaseQuietly(ctx, log, b)
        m.cancelBookingQuietly(ctx, log, b.ID)
        return nil, newError(KindInternal, "confirm booking", err)
    }
    b.Status = model.BookingConfirmed
    b.UpdatedAt = at

    log.WithField("ticket_id", issued.Ticket.ID).Info("booking confirmed")
    publish(ctx, m.events, m.logger, queue.Event{
        Type:       queue.BookingConfirmed,
        BookingID:  b.ID,
        TicketID:   issued.Ticket.ID,
        ShowID:     b.ShowID,
        Seat:       b.Seat.String(),
        StudentID:  b.StudentID,
        OccurredAt: at,
    })
    return &Reservation{Booking: b, Ticket: issued.Ticket, QRCode: issued.QRCode}, nil
}

// Cancel cancels a booking, voids its ticket and frees its seat.  It is
// idempotent: repeated calls report AlreadyCancelled and re-apply the
// release steps, each of which is conditional.  A ticket that was already
// used stays used.  Students may cancel only their own bookings.
func (m *BookingManager) Cancel(ctx context.Context, bookingID string, caller model.Caller) (*CancelResult, error) {
    b, err := m.Get(ctx, bookingID, caller)
    if err != nil {
        return nil, err
    }
    log := m.logger.WithContext(ctx).WithFields(logrus.Fields{"booking_id": b.ID, "caller_id": caller.ID})

    at := stamp(m.clock)
    already := b.Status == model.BookingCancelled
    if !already {
        err := m.bookings.Transition(ctx, b.ID,
            []model.BookingStatus{model.BookingPending, model.BookingConfirmed}, model.BookingCancelled, at)
        switch {
        case errs.Is(err, repository.ErrConflict):
            // A concurrent cancel or reclaim got there first.
            already = true
        case err != nil:
            log.WithError(err).Error("cancel booking")
            return nil, newError(KindInternal, "cancel booking", err)
        }
    }

    if err := m.voidTicket(ctx, b.ID, at); err != nil {
        log.WithError(err).Error("cancel ticket")
        return nil, err
    }
    if err := m.ledger.ReleaseSeat(ctx, b.ShowID, b.Seat, b.ID); err != nil && !IsKind(err, KindNotFound) {
        log.WithError(err).Error("release seat")
        return nil, err
    }

    current, err := m.bookings.Get(ctx, b.ID)
    if err != nil {
        return nil, newError(KindInternal, "reload booking", err)
    }
    if !already {
        log.Info("booking cancelled")
        publish(ctx, m.events, m.logger, queue.Event{
            Type:       queue.BookingCancelled,
            BookingID:  b.ID,
            ShowID:     b.ShowID,
            Seat:       b.Seat.String(),
            StudentID:  b.StudentID,
            OccurredAt: at,
        })
    }
    return &CancelResult{Booking: *current, AlreadyCancelled: already}, nil
}

// Get returns a booking visible to caller.  Students see only their own
// bookings; admins see all.
func (m *BookingManager) Get(ctx context.Context, bookingID string, caller model.Caller) (*model.Booking, error) {
    b, err := m.bookings.Get(ctx, bookingID)
    switch {
    case errs.Is(err, repository.ErrNotFound):
        return nil, newError(KindNotFound, "booking "+bookingID+" not found", nil)
    case err != nil:
        return nil, newError(KindInternal, "load booking", err)
    }
    if !caller.IsAdmin() && b.StudentID != caller.ID {
        return nil, newError(KindForbidden, "booking "+bookingID+" belongs to another student", repository.ErrForbidden)
    }
    return b, nil
}

// ReclaimExpired cancels pending bookings whose hold outlived the hold
// timeout, frees their seats and voids any ticket already issued for them.
// It returns the number of bookings reclaimed.
func (m *BookingManager) ReclaimExpired(ctx context.Context, limit int) (int, error) {
    at := stamp(m.clock)
    cutoff := at.Add(-m.ledger.HoldTimeout())
    pending, err := m.bookings.ListPendingBefore(ctx, cutoff, limit)
    if err != nil {
        return 0, newError(KindInternal, "list pending bookings", err)
    }
    reclaimed := 0
    for _, b := range pending {
        if ctx.Err() != nil {
            return reclaimed, ctx.Err()
        }
        log := m.logger.WithContext(ctx).WithField("booking_id", b.ID)
        err := m.bookings.Transition(ctx, b.ID, []model.BookingStatus{model.BookingPending}, model.BookingCancelled, at)
        if errs.Is(err, repository.ErrConflict) {
            continue
        }
        if err != nil {
            log.WithError(err).Warn("reclaim booking")
            continue
        }
        m.cancelTicketByBookingQuietly(ctx, log, b.ID, at)
        m.releaseQuietly(ctx, log, b)
        reclaimed++
        log.Info("expired hold reclaimed")
        publish(ctx, m.events, m.logger, queue.Event{
            Type:       queue.HoldReclaimed,
            BookingID:  b.ID,
            ShowID:     b.ShowID,
            Seat:       b.Seat.String(),
            StudentID:  b.StudentID,
            OccurredAt: at,
        })
    }
    return reclaimed, nil
}

// voidTicket cancels the booking's ticket if it is still issued.
func (m *BookingManager) voidTicket(ctx context.Context, bookingID string, at time.Time) error {
    t, err := m.tickets.GetByBooking(ctx, bookingID)
    switch {
    case errs.Is(err, repository.ErrNotFound):
        return nil
    case err != nil:
        return newError(KindInternal, "load ticket", err)
    }
    if t.Status != model.TicketIssued {
        return nil
    }
    err = m.tickets.Cancel(ctx, t.ID, at)
    if err != nil && !errs.Is(err, repository.ErrConflict) {
        return newError(KindInternal, "cancel ticket", err)
    }
    return nil
}

func (m *BookingManager) releaseQuietly(ctx context.Context, log *logrus.Entry, b model.Booking) {
    if err := m.ledger.ReleaseSeat(ctx, b.ShowID, b.Seat, b.ID); err != nil && !IsKind(err, KindNotFound) {
        log.WithError(err).Error("release seat")
    }
}

func (m *BookingManager) cancelBookingQuietly(ctx context.Context, log *logrus.Entry, bookingID string) {
    err := m.bookings.Transition(ctx, bookingID, []model.BookingStatus{model.BookingPending}, model.BookingCancelled, stamp(m.clock))
    if err != nil && !errs.Is(err, repository.ErrConflict) {
        log.WithError(err).Error("cancel booking")
    }
}

func (m *BookingManager) cancelTicketQuietly(ctx context.Context, log *logrus.Entry, ticketID string) {
    err := m.tickets.Cancel(ctx, ticketID, stamp(m.clock))
    if err != nil && !errs.Is(err, repository.ErrConflict) {
        log.WithError(err).Error("cancel ticket")
    }
}

func (m *BookingManager) cancelTicketByBookingQuietly(ctx context.Context, log *logrus.Entry, bookingID string, at time.Time) {
    if err := m.voidTicket(ctx, bookingID, at); err != nil {
        log.WithError(err).Error("cancel ticket")
    }
}
