package model

import "strings"

// Gender is the declared gender of a student and, for a show, the only
// gender admitted to it.
type Gender string

const (
    GenderMale   Gender = "MALE"
    GenderFemale Gender = "FEMALE"
)

// ParseGender normalizes raw into a Gender.  The second return value is
// false when raw names neither MALE nor FEMALE.
func ParseGender(raw string) (Gender, bool) {
    switch Gender(strings.ToUpper(strings.TrimSpace(raw))) {
    case GenderMale:
        return GenderMale, true
    case GenderFemale:
        return GenderFemale, true
    }
    return "", false
}

// Show represents a scheduled auditorium show.  Shows are created by the
// catalog collaborator and never change once bookings begin.
//
// Fields:
//  ID           – catalog identifier (e.g. "S1").
//  Title        – human readable title.
//  Date         – calendar date of the show ("2006-01-02").
//  Time         – local start time ("15:04").
//  Rows         – number of seat rows in the grid.
//  Cols         – number of seats per row.
//  Gender       – the only gender admitted to the show.
//  DamagedSeats – seats permanently out of service for this show.
type Show struct {
    ID           string     `json:"id"`            // shows.id
    Title        string     `json:"title"`         // shows.title
    Date         string     `json:"date"`          // shows.show_date
    Time         string     `json:"time"`          // shows.show_time
    Rows         int        `json:"rows"`          // shows.seat_rows
    Cols         int        `json:"cols"`          // shows.seat_cols
    Gender       Gender     `json:"gender"`        // shows.gender
    DamagedSeats []SeatCode `json:"damaged_seats"` // show_damaged_seats.seat_code
}

// HasSeat reports whether code lies inside the show's seat grid.
func (s *Show) HasSeat(code SeatCode) bool {
    return code.Row >= 0 && code.Row < s.Rows && code.Col >= 1 && code.Col <= s.Cols
}

// IsDamaged reports whether code is in the permanently damaged set.
func (s *Show) IsDamaged(code SeatCode) bool {
    for _, d := range s.DamagedSeats {
        if d == code {
            return true
        }
    }
    return false
}

// Admits reports whether a student of gender g may sit in this show.
func (s *Show) Admits(g Gender) bool {
    return s.Gender == g
}
