package service

import (
    "context"
    "errors"

    "github.com/sirupsen/logrus"

    "github.com/iliyamo/auditorium-seat-reservation/internal/clock"
    "github.com/iliyamo/auditorium-seat-reservation/internal/errs"
    "github.com/iliyamo/auditorium-seat-reservation/internal/model"
    "github.com/iliyamo/auditorium-seat-reservation/internal/queue"
    "github.com/iliyamo/auditorium-seat-reservation/internal/repository"
    "github.com/iliyamo/auditorium-seat-reservation/internal/ticket"
)

// Admission is the outcome of a successful door validation.
type Admission struct {
    Booking model.Booking
    Seat    model.SeatCode
    Ticket  model.Ticket
}

// TicketValidator consumes ticket tokens at the door.
type TicketValidator struct {
    signer   *ticket.Signer
    tickets  TicketStore
    bookings BookingStore
    events   EventPublisher
    clock    clock.Clock
    logger   *logrus.Logger
}

func NewTicketValidator(signer *ticket.Signer, tickets TicketStore, bookings BookingStore, events EventPublisher, clk clock.Clock, logger *logrus.Logger) *TicketValidator {
    return &TicketValidator{signer: signer, tickets: tickets, bookings: bookings, events: events, clock: clk, logger: logger}
}

// Validate verifies the token offline, then moves its ticket from issued to
// used with a single conditional update.  Of any number of concurrent
// validations of one token exactly one succeeds.  Failed validations
// change nothing.
func (v *TicketValidator) Validate(ctx context.Context, raw string) (*Admission, error) {
    at := stamp(v.clock)
    p, err := v.signer.Verify(raw, at)
    switch {
    case errors.Is(err, ticket.ErrExpiredToken):
        return nil, newError(KindTokenExpired, "ticket token expired", err)
    case errors.Is(err, ticket.ErrNoSigningKey):
        return nil, newError(KindInternal, "verify ticket token", err)
    case err != nil:
        return nil, newError(KindTokenInvalid, "ticket token rejected", err)
    }
    log := v.logger.WithContext(ctx).WithFields(logrus.Fields{"ticket_id": p.TicketID, "booking_id": p.BookingID})

    err = v.tickets.MarkUsed(ctx, p.TicketID, at)
    switch {
    case errs.Is(err, repository.ErrNotFound):
        return nil, newError(KindNotFound, "ticket "+p.TicketID+" not found", nil)
    case errs.Is(err, repository.ErrConflict):
        return nil, v.rejectConsumed(ctx, p.TicketID)
    case err != nil:
        log.WithError(err).Error("mark ticket used")
        return nil, newError(KindInternal, "mark ticket used", err)
    }

    t, err := v.tickets.Get(ctx, p.TicketID)
    if err != nil {
        return nil, newError(KindInternal, "reload ticket", err)
    }
    b, err := v.bookings.Get(ctx, p.BookingID)
    if err != nil {
        return nil, newError(KindInternal, "load booking", err)
    }
    log.Info("ticket validated")
    publish(ctx, v.events, v.logger, queue.Event{
        Type:       queue.TicketValidated,
        BookingID:  b.ID,
        TicketID:   t.ID,
        ShowID:     b.ShowID,
        Seat:       b.Seat.String(),
        StudentID:  b.StudentID,
        OccurredAt: at,
    })
    return &Admission{Booking: *b, Seat: b.Seat, Ticket: *t}, nil
}

// rejectConsumed explains why the conditional update matched nothing.  A
// ticket still reading issued lost a race to a concurrent validation.
func (v *TicketValidator) rejectConsumed(ctx context.Context, ticketID string) error {
    t, err := v.tickets.Get(ctx, ticketID)
    if err != nil {
        if errs.Is(err, repository.ErrNotFound) {
            return newError(KindNotFound, "ticket "+ticketID+" not found", nil)
        }
        return newError(KindInternal, "reload ticket", err)
    }
    if t.Status == model.TicketCancelled {
        return newError(KindTicketCancelled, "ticket "+ticketID+" was cancelled", nil)
    }
    return newError(KindTicketAlreadyUsed, "ticket "+ticketID+" already used", nil)
}

func publish(ctx context.Context, events EventPublisher, logger *logrus.Logger, ev queue.Event) {
    if events == nil {
        return
    }
    if err := events.Publish(ctx, ev); err != nil {
        logger.WithContext(ctx).WithError(err).WithField("event", ev.Type).Warn("publish lifecycle event")
    }
}
