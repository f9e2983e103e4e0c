package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"
    "time"

    "github.com/sirupsen/logrus"

    "github.com/iliyamo/auditorium-seat-reservation/internal/errs"
    "github.com/iliyamo/auditorium-seat-reservation/internal/model"
)

// BookingRepo manages the bookings table.  Status changes are conditional
// on the prior status so that concurrent confirm, cancel and reclaim
// attempts resolve to exactly one winner.
type BookingRepo struct {
    db     *sql.DB
    logger *logrus.Logger
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB, logger *logrus.Logger) *BookingRepo {
    return &BookingRepo{db: db, logger: logger}
}

const bookingColumns = `id, show_id, seat_code, student_id, status, created_at, updated_at`

// Create inserts a new booking row.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
    const q = `INSERT INTO bookings (` + bookingColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
    _, err := r.db.ExecContext(ctx, q,
        b.ID, b.ShowID, b.Seat.String(), b.StudentID, string(b.Status), b.CreatedAt.UTC(), b.UpdatedAt.UTC())
    if err != nil {
        r.logger.WithContext(ctx).WithError(err).WithField("booking_id", b.ID).Error("create booking")
        return insertError(err, "create booking")
    }
    return nil
}

// Get returns a booking by ID or ErrNotFound.
func (r *BookingRepo) Get(ctx context.Context, id string) (*model.Booking, error) {
    row := r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
    b, err := scanBooking(row.Scan)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrNotFound
        }
        return nil, errs.Wrap(err, "load booking")
    }
    return b, nil
}

// Transition moves a booking to status `to` provided its current status is
// one of `from`.  ErrNotFound is returned for unknown bookings and
// ErrConflict when the current status does not match.
func (r *BookingRepo) Transition(ctx context.Context, id string, from []model.BookingStatus, to model.BookingStatus, at time.Time) error {
    if len(from) == 0 {
        return errs.New("transition requires at least one source status")
    }
    placeholders := make([]string, len(from))
    args := []interface{}{string(to), at.UTC(), id}
    for i, s := range from {
        placeholders[i] = "?"
        args = append(args, string(s))
    }
    q := `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ? AND status IN (` + strings.Join(placeholders, ",") + `)`
    res, err := r.db.ExecContext(ctx, q, args...)
    if err != nil {
        r.logger.WithContext(ctx).WithError(err).WithField("booking_id", id).Error("transition booking")
        return errs.Wrap(err, "transition booking")
    }
    n, err := res.RowsAffected()
    if err != nil {
        return errs.Wrap(err, "transition rows affected")
    }
    if n > 0 {
        return nil
    }
    var exists int
    err = r.db.QueryRowContext(ctx, `SELECT 1 FROM bookings WHERE id = ?`, id).Scan(&exists)
    if errors.Is(err, sql.ErrNoRows) {
        return ErrNotFound
    }
    if err != nil {
        return errs.Wrap(err, "check booking")
    }
    return ErrConflict
}

// ListPendingBefore returns at most limit pending bookings created at or
// before cutoff, oldest first.
func (r *BookingRepo) ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]model.Booking, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT `+bookingColumns+` FROM bookings
         WHERE status = 'pending' AND created_at <= ?
         ORDER BY created_at LIMIT ?`, cutoff.UTC(), limit)
    if err != nil {
        return nil, errs.Wrap(err, "list pending bookings")
    }
    defer rows.Close()
    var out []model.Booking
    for rows.Next() {
        b, err := scanBooking(rows.Scan)
        if err != nil {
            return nil, errs.Wrap(err, "scan booking")
        }
        out = append(out, *b)
    }
    if err := rows.Err(); err != nil {
        return nil, errs.Wrap(err, "iterate bookings")
    }
    return out, nil
}

func scanBooking(scan func(dest ...interface{}) error) (*model.Booking, error) {
    var b model.Booking
    var seat, status string
    if err := scan(&b.ID, &b.ShowID, &seat, &b.StudentID, &status, &b.CreatedAt, &b.UpdatedAt); err != nil {
        return nil, err
    }
    code, err := model.ParseSeatCode(seat)
    if err != nil {
        return nil, err
    }
    b.Seat = code
    b.Status = model.BookingStatus(status)
    b.CreatedAt = b.CreatedAt.UTC()
    b.UpdatedAt = b.UpdatedAt.UTC()
    return &b, nil
}
