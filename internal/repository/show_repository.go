package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"

    "github.com/sirupsen/logrus"

    "github.com/iliyamo/auditorium-seat-reservation/internal/errs"
    "github.com/iliyamo/auditorium-seat-reservation/internal/model"
)

// ShowRepo reads the immutable show catalog from the shows and
// show_damaged_seats tables.  Shows are written only by the catalog import
// at startup; the reservation engine never mutates them.
type ShowRepo struct {
    db     *sql.DB
    logger *logrus.Logger
}

// NewShowRepo returns a ShowRepo bound to the given database.
func NewShowRepo(db *sql.DB, logger *logrus.Logger) *ShowRepo {
    return &ShowRepo{db: db, logger: logger}
}

// GetShow loads a show together with its permanently damaged seats.
// ErrNotFound is returned when the show does not exist.
func (r *ShowRepo) GetShow(ctx context.Context, showID string) (*model.Show, error) {
    const q = `SELECT id, title, show_date, show_time, seat_rows, seat_cols, gender
               FROM shows WHERE id = ?`
    var s model.Show
    var gender string
    err := r.db.QueryRowContext(ctx, q, showID).Scan(
        &s.ID, &s.Title, &s.Date, &s.Time, &s.Rows, &s.Cols, &gender,
    )
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrNotFound
        }
        r.logger.WithContext(ctx).WithError(err).WithField("show_id", showID).Error("load show")
        return nil, errs.Wrap(err, "load show")
    }
    s.Gender = model.Gender(gender)

    rows, err := r.db.QueryContext(ctx,
        `SELECT seat_code FROM show_damaged_seats WHERE show_id = ? ORDER BY seat_code`, showID)
    if err != nil {
        return nil, errs.Wrap(err, "load damaged seats")
    }
    defer rows.Close()
    for rows.Next() {
        var raw string
        if err := rows.Scan(&raw); err != nil {
            return nil, errs.Wrap(err, "scan damaged seat")
        }
        code, err := model.ParseSeatCode(raw)
        if err != nil {
            // Ignore malformed rows rather than failing the whole show.
            r.logger.WithContext(ctx).WithField("seat_code", raw).Warn("skipping malformed damaged seat")
            continue
        }
        s.DamagedSeats = append(s.DamagedSeats, code)
    }
    if err := rows.Err(); err != nil {
        return nil, errs.Wrap(err, "iterate damaged seats")
    }
    return &s, nil
}

// UpsertShow writes a catalog record and replaces its damaged seat list in
// a single transaction.  It is used by the catalog import only.
func (r *ShowRepo) UpsertShow(ctx context.Context, s model.Show) error {
    return withTx(ctx, r.db, func(tx *sql.Tx) error {
        const q = `INSERT INTO shows (id, title, show_date, show_time, seat_rows, seat_cols, gender)
                   VALUES (?, ?, ?, ?, ?, ?, ?)
                   ON DUPLICATE KEY UPDATE title = VALUES(title), show_date = VALUES(show_date),
                       show_time = VALUES(show_time), seat_rows = VALUES(seat_rows),
                       seat_cols = VALUES(seat_cols), gender = VALUES(gender)`
        if _, err := tx.ExecContext(ctx, q, s.ID, s.Title, s.Date, s.Time, s.Rows, s.Cols, string(s.Gender)); err != nil {
            return errs.Wrapf(err, "upsert show %s", s.ID)
        }
        if _, err := tx.ExecContext(ctx, `DELETE FROM show_damaged_seats WHERE show_id = ?`, s.ID); err != nil {
            return errs.Wrap(err, "clear damaged seats")
        }
        if len(s.DamagedSeats) == 0 {
            return nil
        }
        query := `INSERT IGNORE INTO show_damaged_seats (show_id, seat_code) VALUES `
        args := make([]interface{}, 0, len(s.DamagedSeats)*2)
        parts := make([]string, 0, len(s.DamagedSeats))
        for _, code := range s.DamagedSeats {
            parts = append(parts, "(?, ?)")
            args = append(args, s.ID, code.String())
        }
        query += strings.Join(parts, ",")
        if _, err := tx.ExecContext(ctx, query, args...); err != nil {
            return errs.Wrap(err, "insert damaged seats")
        }
        return nil
    })
}
