package service

import (
    "context"
    "time"

    "github.com/google/uuid"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/auditorium-seat-reservation/internal/clock"
    "github.com/iliyamo/auditorium-seat-reservation/internal/model"
    "github.com/iliyamo/auditorium-seat-reservation/internal/ticket"
)

// DefaultTicketTTL is the validity window of a ticket token.
const DefaultTicketTTL = 30 * 24 * time.Hour

// IssuedTicket is a persisted ticket plus its scannable PNG encoding.
type IssuedTicket struct {
    Ticket model.Ticket
    QRCode []byte
}

// TicketIssuer mints signed tokens for bookings and persists the tickets.
type TicketIssuer struct {
    signer  *ticket.Signer
    encoder ticket.Encoder
    tickets TicketStore
    clock   clock.Clock
    ttl     time.Duration
    logger  *logrus.Logger
}

func NewTicketIssuer(signer *ticket.Signer, encoder ticket.Encoder, tickets TicketStore, clk clock.Clock, ttl time.Duration, logger *logrus.Logger) *TicketIssuer {
    if ttl <= 0 {
        ttl = DefaultTicketTTL
    }
    return &TicketIssuer{signer: signer, encoder: encoder, tickets: tickets, clock: clk, ttl: ttl, logger: logger}
}

// Issue signs a token bound to the booking, renders it as a QR code and
// stores the ticket as issued.  Any failure, including a missing signing
// key, is reported as IssuanceFailed and leaves nothing persisted.
func (i *TicketIssuer) Issue(ctx context.Context, b model.Booking) (*IssuedTicket, error) {
    issuedAt := stamp(i.clock)
    t := model.Ticket{
        ID:        uuid.NewString(),
        BookingID: b.ID,
        Status:    model.TicketIssued,
        IssuedAt:  issuedAt,
        ExpiresAt: issuedAt.Add(i.ttl),
    }
    log := i.logger.WithContext(ctx).WithFields(logrus.Fields{"booking_id": b.ID, "ticket_id": t.ID})

    token, err := i.signer.Sign(ticket.Payload{
        TicketID:  t.ID,
        ShowID:    b.ShowID,
        StudentID: b.StudentID,
        BookingID: b.ID,
        IssuedAt:  t.IssuedAt,
        ExpiresAt: t.ExpiresAt,
    })
    if err != nil {
        log.WithError(err).Error("sign ticket token")
        return nil, newError(KindIssuanceFailed, "sign ticket token", err)
    }
    t.Token = token

    png, err := i.encoder.Encode(token)
    if err != nil {
        log.WithError(err).Error("encode ticket qr code")
        return nil, newError(KindIssuanceFailed, "encode qr code", err)
    }
    if err := i.tickets.Create(ctx, &t); err != nil {
        log.WithError(err).Error("persist ticket")
        return nil, newError(KindIssuanceFailed, "persist ticket", err)
    }
    log.Debug("ticket issued")
    return &IssuedTicket{Ticket: t, QRCode: png}, nil
}
