package model

import "time"

// DamageReport is filed by the admin workflow and correlated against the
// seat occupancy history.  The engine does not store it.
type DamageReport struct {
    ShowID      string    `json:"show_id"`
    Seat        SeatCode  `json:"seat"`
    Timestamp   time.Time `json:"timestamp"`
    Description string    `json:"description"`
}
