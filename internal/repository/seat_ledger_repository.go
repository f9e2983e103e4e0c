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

// ClaimParams describes a seat claim.  A seat is claimable when it is free
// or held by a hold taken at or before StaleBefore.
type ClaimParams struct {
    ShowID      string
    Seat        model.SeatCode
    BookingID   string
    StudentID   string
    Now         time.Time
    StaleBefore time.Time
}

// SeatLedgerRepo persists per-seat state in seat_ledger and the occupancy
// history in seat_occupancy.  Every transition is a single guarded UPDATE
// whose RowsAffected decides the outcome; no row locks are held across
// calls.
type SeatLedgerRepo struct {
    db     *sql.DB
    logger *logrus.Logger
}

// NewSeatLedgerRepo returns a SeatLedgerRepo bound to the given database.
func NewSeatLedgerRepo(db *sql.DB, logger *logrus.Logger) *SeatLedgerRepo {
    return &SeatLedgerRepo{db: db, logger: logger}
}

// Claim moves the seat to held for p.BookingID.  Ledger rows are created
// lazily as free.  When an expired hold is overwritten its open occupancy
// is closed at p.Now before the new one is appended.  ErrConflict is
// returned when the seat is held or occupied by someone else.
func (r *SeatLedgerRepo) Claim(ctx context.Context, p ClaimParams) error {
    seat := p.Seat.String()
    // Ensure the row outside the claim transaction: the shared lock taken by
    // a duplicate INSERT IGNORE would otherwise deadlock concurrent claims.
    if _, err := r.db.ExecContext(ctx,
        `INSERT IGNORE INTO seat_ledger (show_id, seat_code, state, version) VALUES (?, ?, 'free', 0)`,
        p.ShowID, seat); err != nil {
        return errs.Wrap(err, "ensure ledger row")
    }
    return withTx(ctx, r.db, func(tx *sql.Tx) error {
        const claim = `UPDATE seat_ledger
                       SET state = 'held', current_booking_id = ?, held_at = ?, version = version + 1
                       WHERE show_id = ? AND seat_code = ?
                         AND (state = 'free' OR (state = 'held' AND held_at <= ?))`
        res, err := tx.ExecContext(ctx, claim, p.BookingID, p.Now.UTC(), p.ShowID, seat, p.StaleBefore.UTC())
        if err != nil {
            r.logger.WithContext(ctx).WithError(err).WithField("seat", seat).Error("claim seat")
            return errs.Wrap(err, "claim seat")
        }
        n, err := res.RowsAffected()
        if err != nil {
            return errs.Wrap(err, "claim rows affected")
        }
        if n == 0 {
            return ErrConflict
        }
        if _, err := tx.ExecContext(ctx,
            `UPDATE seat_occupancy SET released_at = ? WHERE show_id = ? AND seat_code = ? AND released_at IS NULL`,
            p.Now.UTC(), p.ShowID, seat); err != nil {
            return errs.Wrap(err, "close stale occupancy")
        }
        if _, err := tx.ExecContext(ctx,
            `INSERT INTO seat_occupancy (show_id, seat_code, booking_id, student_id, claimed_at) VALUES (?, ?, ?, ?, ?)`,
            p.ShowID, seat, p.BookingID, p.StudentID, p.Now.UTC()); err != nil {
            return errs.Wrap(err, "append occupancy")
        }
        return nil
    })
}

// Occupy turns the hold of bookingID into an occupation.  ErrConflict is
// returned when the seat is no longer held by bookingID.
func (r *SeatLedgerRepo) Occupy(ctx context.Context, showID string, seat model.SeatCode, bookingID string) error {
    const q = `UPDATE seat_ledger SET state = 'occupied', version = version + 1
               WHERE show_id = ? AND seat_code = ? AND state = 'held' AND current_booking_id = ?`
    res, err := r.db.ExecContext(ctx, q, showID, seat.String(), bookingID)
    if err != nil {
        r.logger.WithContext(ctx).WithError(err).WithField("booking_id", bookingID).Error("occupy seat")
        return errs.Wrap(err, "occupy seat")
    }
    n, err := res.RowsAffected()
    if err != nil {
        return errs.Wrap(err, "occupy rows affected")
    }
    if n == 0 {
        return ErrConflict
    }
    return nil
}

// Release frees the seat if and only if bookingID currently owns it and
// closes that booking's open occupancy at now.  ErrNotFound is returned
// when bookingID does not own the seat.
func (r *SeatLedgerRepo) Release(ctx context.Context, showID string, seat model.SeatCode, bookingID string, now time.Time) error {
    code := seat.String()
    return withTx(ctx, r.db, func(tx *sql.Tx) error {
        const q = `UPDATE seat_ledger
                   SET state = 'free', current_booking_id = NULL, held_at = NULL, version = version + 1
                   WHERE show_id = ? AND seat_code = ? AND current_booking_id = ?`
        res, err := tx.ExecContext(ctx, q, showID, code, bookingID)
        if err != nil {
            r.logger.WithContext(ctx).WithError(err).WithField("booking_id", bookingID).Error("release seat")
            return errs.Wrap(err, "release seat")
        }
        n, err := res.RowsAffected()
        if err != nil {
            return errs.Wrap(err, "release rows affected")
        }
        if n == 0 {
            return ErrNotFound
        }
        if _, err := tx.ExecContext(ctx,
            `UPDATE seat_occupancy SET released_at = ?
             WHERE show_id = ? AND seat_code = ? AND booking_id = ? AND released_at IS NULL`,
            now.UTC(), showID, code, bookingID); err != nil {
            return errs.Wrap(err, "close occupancy")
        }
        return nil
    })
}

// Get returns the ledger entry for a seat with its history ordered by
// claim time.  A seat that was never claimed is reported as free with an
// empty history.
func (r *SeatLedgerRepo) Get(ctx context.Context, showID string, seat model.SeatCode) (*model.SeatLedgerEntry, error) {
    code := seat.String()
    entry := &model.SeatLedgerEntry{ShowID: showID, Seat: seat, State: model.SeatFree}

    var state string
    var current sql.NullString
    var heldAt sql.NullTime
    err := r.db.QueryRowContext(ctx,
        `SELECT state, current_booking_id, held_at, version FROM seat_ledger WHERE show_id = ? AND seat_code = ?`,
        showID, code).Scan(&state, &current, &heldAt, &entry.Version)
    switch {
    case errors.Is(err, sql.ErrNoRows):
        entry.History = []model.Occupancy{}
        return entry, nil
    case err != nil:
        r.logger.WithContext(ctx).WithError(err).WithField("seat", code).Error("load ledger entry")
        return nil, errs.Wrap(err, "load ledger entry")
    }
    entry.State = model.SeatState(state)
    entry.CurrentBookingID = current.String
    entry.HeldAt = nullTime(heldAt)

    history, err := r.history(ctx, r.db, showID, code)
    if err != nil {
        return nil, err
    }
    entry.History = history
    return entry, nil
}

func (r *SeatLedgerRepo) history(ctx context.Context, cmd sqlCommand, showID, code string) ([]model.Occupancy, error) {
    rows, err := cmd.QueryContext(ctx,
        `SELECT booking_id, student_id, claimed_at, released_at
         FROM seat_occupancy WHERE show_id = ? AND seat_code = ?
         ORDER BY claimed_at, id`, showID, code)
    if err != nil {
        return nil, errs.Wrap(err, "load occupancy")
    }
    defer rows.Close()
    out := []model.Occupancy{}
    for rows.Next() {
        var o model.Occupancy
        var released sql.NullTime
        if err := rows.Scan(&o.BookingID, &o.StudentID, &o.ClaimedAt, &released); err != nil {
            return nil, errs.Wrap(err, "scan occupancy")
        }
        o.ClaimedAt = o.ClaimedAt.UTC()
        o.ReleasedAt = nullTime(released)
        out = append(out, o)
    }
    if err := rows.Err(); err != nil {
        return nil, errs.Wrap(err, "iterate occupancy")
    }
    return out, nil
}
