package database

import (
    "context"
    "database/sql"

    "github.com/iliyamo/auditorium-seat-reservation/internal/errs"
)

// schema is applied in order by Migrate.  Every statement is idempotent.
// DATETIME(3) keeps the millisecond precision used by ticket tokens.
var schema = []string{
    `CREATE TABLE IF NOT EXISTS shows (
        id         VARCHAR(64)  NOT NULL PRIMARY KEY,
        title      VARCHAR(255) NOT NULL,
        show_date  VARCHAR(16)  NOT NULL,
        show_time  VARCHAR(16)  NOT NULL,
        seat_rows  INT          NOT NULL,
        seat_cols  INT          NOT NULL,
        gender     ENUM('MALE','FEMALE') NOT NULL
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
    `CREATE TABLE IF NOT EXISTS show_damaged_seats (
        show_id   VARCHAR(64) NOT NULL,
        seat_code VARCHAR(16) NOT NULL,
        PRIMARY KEY (show_id, seat_code),
        CONSTRAINT fk_damaged_show FOREIGN KEY (show_id) REFERENCES shows(id) ON DELETE CASCADE
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
    `CREATE TABLE IF NOT EXISTS seat_ledger (
        show_id            VARCHAR(64) NOT NULL,
        seat_code          VARCHAR(16) NOT NULL,
        state              ENUM('free','held','occupied') NOT NULL DEFAULT 'free',
        current_booking_id CHAR(36)    NULL,
        held_at            DATETIME(3) NULL,
        version            BIGINT UNSIGNED NOT NULL DEFAULT 0,
        PRIMARY KEY (show_id, seat_code)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
    `CREATE TABLE IF NOT EXISTS seat_occupancy (
        id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
        show_id     VARCHAR(64) NOT NULL,
        seat_code   VARCHAR(16) NOT NULL,
        booking_id  CHAR(36)    NOT NULL,
        student_id  VARCHAR(64) NOT NULL,
        claimed_at  DATETIME(3) NOT NULL,
        released_at DATETIME(3) NULL,
        KEY idx_occupancy_seat (show_id, seat_code, claimed_at),
        KEY idx_occupancy_booking (booking_id)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
    `CREATE TABLE IF NOT EXISTS bookings (
        id         CHAR(36)    NOT NULL PRIMARY KEY,
        show_id    VARCHAR(64) NOT NULL,
        seat_code  VARCHAR(16) NOT NULL,
        student_id VARCHAR(64) NOT NULL,
        status     ENUM('pending','confirmed','cancelled') NOT NULL,
        created_at DATETIME(3) NOT NULL,
        updated_at DATETIME(3) NOT NULL,
        KEY idx_bookings_status_created (status, created_at),
        KEY idx_bookings_student (student_id)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
    `CREATE TABLE IF NOT EXISTS tickets (
        id           CHAR(36)    NOT NULL PRIMARY KEY,
        booking_id   CHAR(36)    NOT NULL,
        token        TEXT        NOT NULL,
        status       ENUM('issued','used','cancelled') NOT NULL,
        issued_at    DATETIME(3) NOT NULL,
        used_at      DATETIME(3) NULL,
        expires_at   DATETIME(3) NOT NULL,
        cancelled_at DATETIME(3) NULL,
        UNIQUE KEY uq_tickets_booking (booking_id),
        CONSTRAINT fk_tickets_booking FOREIGN KEY (booking_id) REFERENCES bookings(id)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates the tables used by the reservation engine.
func Migrate(ctx context.Context, db *sql.DB) error {
    for _, stmt := range schema {
        if _, err := db.ExecContext(ctx, stmt); err != nil {
            return errs.Wrap(err, "apply schema")
        }
    }
    return nil
}
