package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/sirupsen/logrus"

    "github.com/iliyamo/auditorium-seat-reservation/internal/errs"
    "github.com/iliyamo/auditorium-seat-reservation/internal/model"
)

// TicketRepo manages the tickets table.  The status column is the guard for
// single-use consumption: a ticket leaves `issued` exactly once.
type TicketRepo struct {
    db     *sql.DB
    logger *logrus.Logger
}

// NewTicketRepo returns a TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB, logger *logrus.Logger) *TicketRepo {
    return &TicketRepo{db: db, logger: logger}
}

const ticketColumns = `id, booking_id, token, status, issued_at, used_at, expires_at, cancelled_at`

// Create inserts a ticket.  booking_id is unique, so a second ticket for the
// same booking fails.
func (r *TicketRepo) Create(ctx context.Context, t *model.Ticket) error {
    const q = `INSERT INTO tickets (` + ticketColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
    _, err := r.db.ExecContext(ctx, q,
        t.ID, t.BookingID, t.Token, string(t.Status), t.IssuedAt.UTC(),
        timeArg(t.UsedAt), t.ExpiresAt.UTC(), timeArg(t.CancelledAt))
    if err != nil {
        r.logger.WithContext(ctx).WithError(err).WithField("ticket_id", t.ID).Error("create ticket")
        return insertError(err, "create ticket")
    }
    return nil
}

// Get returns a ticket by ID or ErrNotFound.
func (r *TicketRepo) Get(ctx context.Context, id string) (*model.Ticket, error) {
    return r.getBy(ctx, `id`, id)
}

// GetByBooking returns the ticket issued for a booking or ErrNotFound.
func (r *TicketRepo) GetByBooking(ctx context.Context, bookingID string) (*model.Ticket, error) {
    return r.getBy(ctx, `booking_id`, bookingID)
}

func (r *TicketRepo) getBy(ctx context.Context, column, value string) (*model.Ticket, error) {
    row := r.db.QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE `+column+` = ?`, value)
    var t model.Ticket
    var status string
    var usedAt, cancelledAt sql.NullTime
    err := row.Scan(&t.ID, &t.BookingID, &t.Token, &status, &t.IssuedAt, &usedAt, &t.ExpiresAt, &cancelledAt)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrNotFound
        }
        return nil, errs.Wrap(err, "load ticket")
    }
    t.Status = model.TicketStatus(status)
    t.IssuedAt = t.IssuedAt.UTC()
    t.ExpiresAt = t.ExpiresAt.UTC()
    t.UsedAt = nullTime(usedAt)
    t.CancelledAt = nullTime(cancelledAt)
    return &t, nil
}

// MarkUsed consumes an issued ticket.  ErrConflict is returned when the
// ticket exists but is no longer issued, ErrNotFound when it does not
// exist.
func (r *TicketRepo) MarkUsed(ctx context.Context, id string, at time.Time) error {
    return r.leaveIssued(ctx, `UPDATE tickets SET status = 'used', used_at = ? WHERE id = ? AND status = 'issued'`, id, at)
}

// Cancel voids an issued ticket with the same guard as MarkUsed, so a
// ticket that was already used stays used.
func (r *TicketRepo) Cancel(ctx context.Context, id string, at time.Time) error {
    return r.leaveIssued(ctx, `UPDATE tickets SET status = 'cancelled', cancelled_at = ? WHERE id = ? AND status = 'issued'`, id, at)
}

func (r *TicketRepo) leaveIssued(ctx context.Context, q, id string, at time.Time) error {
    res, err := r.db.ExecContext(ctx, q, at.UTC(), id)
    if err != nil {
        r.logger.WithContext(ctx).WithError(err).WithField("ticket_id", id).Error("update ticket status")
        return errs.Wrap(err, "update ticket status")
    }
    n, err := res.RowsAffected()
    if err != nil {
        return errs.Wrap(err, "ticket rows affected")
    }
    if n > 0 {
        return nil
    }
    if _, err := r.Get(ctx, id); err != nil {
        return err
    }
    return ErrConflict
}
