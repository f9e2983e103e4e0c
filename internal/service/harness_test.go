package service_test

import (
    "context"
    "sync/atomic"
    "testing"
    "time"

    "github.com/stretchr/testify/require"

    "github.com/iliyamo/auditorium-seat-reservation/internal/clock"
    "github.com/iliyamo/auditorium-seat-reservation/internal/logging"
    "github.com/iliyamo/auditorium-seat-reservation/internal/model"
    "github.com/iliyamo/auditorium-seat-reservation/internal/queue"
    "github.com/iliyamo/auditorium-seat-reservation/internal/repository/memstore"
    "github.com/iliyamo/auditorium-seat-reservation/internal/service"
    "github.com/iliyamo/auditorium-seat-reservation/internal/ticket"
)

var t0 = time.Date(2026, 4, 10, 17, 0, 0, 0, time.UTC)

var (
    maleShow = model.Show{
        ID: "show-m", Title: "Orientation", Date: "2026-04-10", Time: "18:00",
        Rows: 3, Cols: 4, Gender: model.GenderMale,
        DamagedSeats: []model.SeatCode{model.MustSeat("B-2")},
    }
    femaleShow = model.Show{
        ID: "show-f", Title: "Orientation", Date: "2026-04-10", Time: "20:00",
        Rows: 2, Cols: 2, Gender: model.GenderFemale,
    }
    ali   = model.Student{ID: "stu-ali", Gender: model.GenderMale}
    omid  = model.Student{ID: "stu-omid", Gender: model.GenderMale}
    sara  = model.Student{ID: "stu-sara", Gender: model.GenderFemale}
    admin = model.Caller{ID: "adm-1", Role: model.RoleAdmin}
)

func callerOf(s model.Student) model.Caller {
    return model.Caller{ID: s.ID, Role: model.RoleStudent, Gender: s.Gender}
}

// harness wires the services over the in-memory store.
type harness struct {
    clock     *clock.Mock
    shows     *memstore.ShowStore
    ledgerDB  *memstore.SeatLedger
    bookings  service.BookingStore
    tickets   service.TicketStore
    signer    *ticket.Signer
    ledger    *service.SeatLedger
    issuer    *service.TicketIssuer
    manager   *service.BookingManager
    validator *service.TicketValidator
    damage    *service.DamageCorrelator
}

type harnessOption func(*harnessConfig)

type harnessConfig struct {
    secret   string
    events   service.EventPublisher
    tickets  func(service.TicketStore) service.TicketStore
    bookings func(service.BookingStore) service.BookingStore
}

func withSecret(s string) harnessOption {
    return func(c *harnessConfig) { c.secret = s }
}

func withEvents(p service.EventPublisher) harnessOption {
    return func(c *harnessConfig) { c.events = p }
}

func withTicketStore(wrap func(service.TicketStore) service.TicketStore) harnessOption {
    return func(c *harnessConfig) { c.tickets = wrap }
}

func withBookingStore(wrap func(service.BookingStore) service.BookingStore) harnessOption {
    return func(c *harnessConfig) { c.bookings = wrap }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
    t.Helper()
    logger := logging.Discard()
    cfg := harnessConfig{secret: "test-signing-secret", events: queue.NewLogPublisher(logger)}
    for _, o := range opts {
        o(&cfg)
    }

    h := &harness{
        clock:    clock.NewMock(t0),
        shows:    memstore.NewShowStore(),
        ledgerDB: memstore.NewSeatLedger(),
        bookings: memstore.NewBookingStore(),
    }
    if cfg.bookings != nil {
        h.bookings = cfg.bookings(h.bookings)
    }
    h.tickets = memstore.NewTicketStore()
    if cfg.tickets != nil {
        h.tickets = cfg.tickets(h.tickets)
    }
    ctx := context.Background()
    require.NoError(t, h.shows.UpsertShow(ctx, maleShow))
    require.NoError(t, h.shows.UpsertShow(ctx, femaleShow))

    h.signer = ticket.NewSigner(ticket.NewSecretKeyProvider(cfg.secret))
    encoder := ticket.Encoder{BaseURL: "http://localhost:8080/v1/tickets/scan", Size: 64}
    h.ledger = service.NewSeatLedger(h.shows, h.ledgerDB, h.clock, service.DefaultHoldTimeout, logger)
    h.issuer = service.NewTicketIssuer(h.signer, encoder, h.tickets, h.clock, service.DefaultTicketTTL, logger)
    h.manager = service.NewBookingManager(h.ledger, h.issuer, h.bookings, h.tickets, cfg.events, h.clock, logger)
    h.validator = service.NewTicketValidator(h.signer, h.tickets, h.bookings, cfg.events, h.clock, logger)
    h.damage = service.NewDamageCorrelator(h.ledger, h.clock, logger)
    return h
}

func (h *harness) entry(t *testing.T, showID, seat string) *model.SeatLedgerEntry {
    t.Helper()
    e, err := h.ledger.Entry(context.Background(), showID, model.MustSeat(seat))
    require.NoError(t, err)
    return e
}

func (h *harness) booking(t *testing.T, id string) *model.Booking {
    t.Helper()
    b, err := h.bookings.Get(context.Background(), id)
    require.NoError(t, err)
    return b
}

func (h *harness) ticketOf(t *testing.T, bookingID string) *model.Ticket {
    t.Helper()
    tk, err := h.tickets.GetByBooking(context.Background(), bookingID)
    require.NoError(t, err)
    return tk
}

// hookTickets lets a test run code while a ticket is being persisted, or
// make persistence fail.
type hookTickets struct {
    service.TicketStore
    onCreate  func()
    createErr error
}

func (h *hookTickets) Create(ctx context.Context, tk *model.Ticket) error {
    if h.onCreate != nil {
        h.onCreate()
    }
    if h.createErr != nil {
        return h.createErr
    }
    return h.TicketStore.Create(ctx, tk)
}

// countingBookings counts persisted bookings.
type countingBookings struct {
    service.BookingStore
    created atomic.Int32
}

func (c *countingBookings) Create(ctx context.Context, b *model.Booking) error {
    if err := c.BookingStore.Create(ctx, b); err != nil {
        return err
    }
    c.created.Add(1)
    return nil
}
