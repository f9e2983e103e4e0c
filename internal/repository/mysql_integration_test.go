//go:build integration

package repository_test

import (
    "context"
    "database/sql"
    "sync"
    "testing"
    "time"

    "github.com/google/uuid"
    "github.com/stretchr/testify/suite"
    "github.com/testcontainers/testcontainers-go"
    tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"
    "golang.org/x/sync/errgroup"

    "github.com/iliyamo/auditorium-seat-reservation/internal/config"
    "github.com/iliyamo/auditorium-seat-reservation/internal/database"
    "github.com/iliyamo/auditorium-seat-reservation/internal/errs"
    "github.com/iliyamo/auditorium-seat-reservation/internal/logging"
    "github.com/iliyamo/auditorium-seat-reservation/internal/model"
    "github.com/iliyamo/auditorium-seat-reservation/internal/repository"
)

var t0 = time.Date(2026, 4, 10, 17, 0, 0, 0, time.UTC)

type MySQLSuite struct {
    suite.Suite
    ctx       context.Context
    container *tcmysql.MySQLContainer
    db        *sql.DB

    shows    *repository.ShowRepo
    ledger   *repository.SeatLedgerRepo
    bookings *repository.BookingRepo
    tickets  *repository.TicketRepo
}

func TestMySQLSuite(t *testing.T) {
    suite.Run(t, new(MySQLSuite))
}

func (s *MySQLSuite) SetupSuite() {
    s.ctx = context.Background()
    ctr, err := tcmysql.Run(s.ctx, "mysql:8.0.36",
        tcmysql.WithDatabase("auditorium"),
        tcmysql.WithUsername("root"),
        tcmysql.WithPassword("password"),
    )
    s.Require().NoError(err)
    s.container = ctr

    host, err := ctr.Host(s.ctx)
    s.Require().NoError(err)
    port, err := ctr.MappedPort(s.ctx, "3306/tcp")
    s.Require().NoError(err)

    s.db, err = database.Open(s.ctx, config.DBConfig{
        User: "root", Pass: "password", Host: host, Port: port.Port(), Name: "auditorium", MaxOpenConns: 10,
    })
    s.Require().NoError(err)
    s.Require().NoError(database.Migrate(s.ctx, s.db))
    // applying twice is a no-op
    s.Require().NoError(database.Migrate(s.ctx, s.db))

    logger := logging.Discard()
    s.shows = repository.NewShowRepo(s.db, logger)
    s.ledger = repository.NewSeatLedgerRepo(s.db, logger)
    s.bookings = repository.NewBookingRepo(s.db, logger)
    s.tickets = repository.NewTicketRepo(s.db, logger)
}

func (s *MySQLSuite) TearDownSuite() {
    if s.db != nil {
        _ = s.db.Close()
    }
    if s.container != nil {
        s.NoError(testcontainers.TerminateContainer(s.container))
    }
}

func (s *MySQLSuite) newShow() model.Show {
    show := model.Show{
        ID: "show-" + uuid.NewString()[:8], Title: "Orientation", Date: "2026-04-10", Time: "18:00",
        Rows: 4, Cols: 4, Gender: model.GenderMale,
        DamagedSeats: []model.SeatCode{model.MustSeat("B-2"), model.MustSeat("C-3")},
    }
    s.Require().NoError(s.shows.UpsertShow(s.ctx, show))
    return show
}

func (s *MySQLSuite) claim(show, seat string, bookingID, student string, now time.Time) error {
    return s.ledger.Claim(s.ctx, repository.ClaimParams{
        ShowID: show, Seat: model.MustSeat(seat), BookingID: bookingID, StudentID: student,
        Now: now, StaleBefore: now.Add(-2 * time.Minute),
    })
}

func (s *MySQLSuite) TestShowRoundTrip() {
    show := s.newShow()
    got, err := s.shows.GetShow(s.ctx, show.ID)
    s.Require().NoError(err)
    s.Equal(show.Rows, got.Rows)
    s.Equal(model.GenderMale, got.Gender)
    s.ElementsMatch(show.DamagedSeats, got.DamagedSeats)

    // re-importing keeps the show intact
    s.Require().NoError(s.shows.UpsertShow(s.ctx, show))
    again, err := s.shows.GetShow(s.ctx, show.ID)
    s.Require().NoError(err)
    s.Len(again.DamagedSeats, 2)

    _, err = s.shows.GetShow(s.ctx, "missing")
    s.ErrorIs(err, repository.ErrNotFound)
}

func (s *MySQLSuite) TestLedgerLifecycle() {
    show := s.newShow()
    seat := model.MustSeat("A-1")

    entry, err := s.ledger.Get(s.ctx, show.ID, seat)
    s.Require().NoError(err)
    s.Equal(model.SeatFree, entry.State)
    s.Empty(entry.History)

    s.Require().NoError(s.claim(show.ID, "A-1", "b-1", "stu-1", t0))
    s.ErrorIs(s.claim(show.ID, "A-1", "b-2", "stu-2", t0.Add(time.Second)), repository.ErrConflict)

    s.ErrorIs(s.ledger.Occupy(s.ctx, show.ID, seat, "b-2"), repository.ErrConflict)
    s.Require().NoError(s.ledger.Occupy(s.ctx, show.ID, seat, "b-1"))

    entry, err = s.ledger.Get(s.ctx, show.ID, seat)
    s.Require().NoError(err)
    s.Equal(model.SeatOccupied, entry.State)
    s.Equal("b-1", entry.CurrentBookingID)
    s.Require().Len(entry.History, 1)
    s.Nil(entry.History[0].ReleasedAt)

    s.ErrorIs(s.ledger.Release(s.ctx, show.ID, seat, "b-2", t0.Add(time.Minute)), repository.ErrNotFound)
    s.Require().NoError(s.ledger.Release(s.ctx, show.ID, seat, "b-1", t0.Add(time.Minute)))

    entry, err = s.ledger.Get(s.ctx, show.ID, seat)
    s.Require().NoError(err)
    s.Equal(model.SeatFree, entry.State)
    s.Require().Len(entry.History, 1)
    s.Require().NotNil(entry.History[0].ReleasedAt)
    s.True(entry.History[0].ReleasedAt.Equal(t0.Add(time.Minute)))
}

func (s *MySQLSuite) TestStaleHoldTakeover() {
    show := s.newShow()
    s.Require().NoError(s.claim(show.ID, "D-4", "b-old", "stu-1", t0))

    later := t0.Add(3 * time.Minute)
    s.Require().NoError(s.claim(show.ID, "D-4", "b-new", "stu-2", later))
    s.ErrorIs(s.ledger.Occupy(s.ctx, show.ID, model.MustSeat("D-4"), "b-old"), repository.ErrConflict)

    entry, err := s.ledger.Get(s.ctx, show.ID, model.MustSeat("D-4"))
    s.Require().NoError(err)
    s.Require().Len(entry.History, 2)
    s.Equal("b-old", entry.History[0].BookingID)
    s.Require().NotNil(entry.History[0].ReleasedAt)
    s.True(entry.History[0].ReleasedAt.Equal(later))
    s.Equal("b-new", entry.History[1].BookingID)
}

func (s *MySQLSuite) TestConcurrentClaimsHaveOneWinner() {
    show := s.newShow()
    const n = 16
    var (
        mu      sync.Mutex
        winners []string
    )
    var g errgroup.Group
    for i := 0; i < n; i++ {
        id := uuid.NewString()
        g.Go(func() error {
            err := s.claim(show.ID, "A-2", id, "stu-"+id[:4], t0)
            if err == nil {
                mu.Lock()
                winners = append(winners, id)
                mu.Unlock()
                return nil
            }
            if errs.Is(err, repository.ErrConflict) {
                return nil
            }
            return err
        })
    }
    s.Require().NoError(g.Wait())
    s.Len(winners, 1)
}

func (s *MySQLSuite) TestBookingAndTicketTransitions() {
    show := s.newShow()
    b := &model.Booking{
        ID: uuid.NewString(), ShowID: show.ID, Seat: model.MustSeat("A-3"), StudentID: "stu-1",
        Status: model.BookingPending, CreatedAt: t0, UpdatedAt: t0,
    }
    s.Require().NoError(s.bookings.Create(s.ctx, b))

    pending, err := s.bookings.ListPendingBefore(s.ctx, t0.Add(time.Second), 10)
    s.Require().NoError(err)
    s.Contains(idsOf(pending), b.ID)

    s.Require().NoError(s.bookings.Transition(s.ctx, b.ID, []model.BookingStatus{model.BookingPending}, model.BookingConfirmed, t0.Add(time.Second)))
    s.ErrorIs(s.bookings.Transition(s.ctx, b.ID, []model.BookingStatus{model.BookingPending}, model.BookingCancelled, t0), repository.ErrConflict)
    s.ErrorIs(s.bookings.Transition(s.ctx, "missing", []model.BookingStatus{model.BookingPending}, model.BookingCancelled, t0), repository.ErrNotFound)

    got, err := s.bookings.Get(s.ctx, b.ID)
    s.Require().NoError(err)
    s.Equal(model.BookingConfirmed, got.Status)
    s.Equal(model.MustSeat("A-3"), got.Seat)

    tk := &model.Ticket{
        ID: uuid.NewString(), BookingID: b.ID, Token: "tok", Status: model.TicketIssued,
        IssuedAt: t0, ExpiresAt: t0.Add(24 * time.Hour),
    }
    s.Require().NoError(s.tickets.Create(s.ctx, tk))
    dup := *tk
    dup.ID = uuid.NewString()
    s.True(errs.Is(s.tickets.Create(s.ctx, &dup), repository.ErrConflict))

    s.Require().NoError(s.tickets.MarkUsed(s.ctx, tk.ID, t0.Add(time.Hour)))
    s.ErrorIs(s.tickets.MarkUsed(s.ctx, tk.ID, t0.Add(2*time.Hour)), repository.ErrConflict)
    s.ErrorIs(s.tickets.Cancel(s.ctx, tk.ID, t0.Add(2*time.Hour)), repository.ErrConflict)
    s.ErrorIs(s.tickets.MarkUsed(s.ctx, "missing", t0), repository.ErrNotFound)

    used, err := s.tickets.GetByBooking(s.ctx, b.ID)
    s.Require().NoError(err)
    s.Equal(model.TicketUsed, used.Status)
    s.Require().NotNil(used.UsedAt)
    s.True(used.UsedAt.Equal(t0.Add(time.Hour)))
}

func idsOf(bs []model.Booking) []string {
    out := make([]string, 0, len(bs))
    for _, b := range bs {
        out = append(out, b.ID)
    }
    return out
}
