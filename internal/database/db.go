package database

import (
    "context"
    "database/sql"
    "time"

    _ "github.com/go-sql-driver/mysql"

    "github.com/iliyamo/auditorium-seat-reservation/internal/config"
    "github.com/iliyamo/auditorium-seat-reservation/internal/errs"
)

// Open connects to MySQL and verifies the connection.
func Open(ctx context.Context, cfg config.DBConfig) (*sql.DB, error) {
    db, err := sql.Open("mysql", cfg.DSN())
    if err != nil {
        return nil, errs.Wrap(err, "open mysql")
    }

    // Pool settings
    maxOpen := cfg.MaxOpenConns
    if maxOpen <= 0 {
        maxOpen = 25
    }
    db.SetMaxOpenConns(maxOpen)
    db.SetMaxIdleConns(maxOpen)
    db.SetConnMaxLifetime(30 * time.Minute)

    // Ping with timeout
    pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
    defer cancel()
    if err := db.PingContext(pingCtx); err != nil {
        _ = db.Close()
        return nil, errs.Wrap(err, "ping mysql")
    }
    return db, nil
}
