package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/go-sql-driver/mysql"

    "github.com/iliyamo/auditorium-seat-reservation/internal/errs"
)

// ER_DUP_ENTRY
const mysqlDuplicateEntry = 1062

// sqlCommand is satisfied by both *sql.DB and *sql.Tx so that read helpers
// can run inside or outside a transaction.
type sqlCommand interface {
    ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
    QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
    QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// withTx runs fn inside a transaction.  The transaction is committed when fn
// returns nil and rolled back otherwise; fn's error is returned unchanged so
// that sentinels survive.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
    tx, err := db.BeginTx(ctx, nil)
    if err != nil {
        return errs.Wrap(err, "begin tx")
    }
    defer func() { _ = tx.Rollback() }()
    if err := fn(tx); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return errs.Wrap(err, "commit tx")
    }
    return nil
}

// nullTime converts a nullable DATETIME column to *time.Time in UTC.
func nullTime(v sql.NullTime) *time.Time {
    if !v.Valid {
        return nil
    }
    t := v.Time.UTC()
    return &t
}

// timeArg converts an optional time to a driver argument.
func timeArg(t *time.Time) interface{} {
    if t == nil {
        return nil
    }
    return t.UTC()
}

// insertError wraps an INSERT failure.  Unique-key violations are marked as
// ErrConflict, the same sentinel the in-memory store returns, while keeping
// the driver message.
func insertError(err error, msg string) error {
    wrapped := errs.Wrap(err, msg)
    var me *mysql.MySQLError
    if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
        return errs.Mark(wrapped, ErrConflict)
    }
    return wrapped
}
