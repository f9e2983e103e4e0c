package service

import (
    "context"
    "sort"
    "time"

    "github.com/sirupsen/logrus"

    "github.com/iliyamo/auditorium-seat-reservation/internal/clock"
    "github.com/iliyamo/auditorium-seat-reservation/internal/model"
)

// Candidate is an occupant whose occupancy interval contains the damage
// timestamp.  OccupiedTo is nil while the occupancy is still open.
type Candidate struct {
    BookingID    string     `json:"booking_id"`
    StudentID    string     `json:"student_id"`
    OccupiedFrom time.Time  `json:"occupied_from"`
    OccupiedTo   *time.Time `json:"occupied_to"`
}

// DamageCorrelator attributes damage reports to seat occupants using the
// seat ledger history.
type DamageCorrelator struct {
    ledger *SeatLedger
    clock  clock.Clock
    logger *logrus.Logger
}

func NewDamageCorrelator(ledger *SeatLedger, clk clock.Clock, logger *logrus.Logger) *DamageCorrelator {
    return &DamageCorrelator{ledger: ledger, clock: clk, logger: logger}
}

// Attribute returns every occupant whose [claimed, released) interval
// contains at, ordered by claim time.  An open interval runs through now
// inclusive.  Several
// candidates may be returned; the caller decides.  An empty result means no
// one occupied the seat at that time.
func (d *DamageCorrelator) Attribute(ctx context.Context, showID string, seat model.SeatCode, at time.Time) ([]Candidate, error) {
    entry, err := d.ledger.Entry(ctx, showID, seat)
    if err != nil {
        return nil, err
    }
    now := d.clock.Now().UTC()
    out := []Candidate{}
    for _, o := range entry.History {
        if !o.Covers(at, now) {
            continue
        }
        c := Candidate{BookingID: o.BookingID, StudentID: o.StudentID, OccupiedFrom: o.ClaimedAt}
        if o.ReleasedAt != nil {
            to := *o.ReleasedAt
            c.OccupiedTo = &to
        }
        out = append(out, c)
    }
    sort.SliceStable(out, func(i, j int) bool { return out[i].OccupiedFrom.Before(out[j].OccupiedFrom) })
    d.logger.WithContext(ctx).WithFields(logrus.Fields{
        "show_id":    showID,
        "seat":       seat.String(),
        "at":         at,
        "candidates": len(out),
    }).Info("damage attribution")
    return out, nil
}

// AttributeReport is Attribute applied to a filed report.
func (d *DamageCorrelator) AttributeReport(ctx context.Context, r model.DamageReport) ([]Candidate, error) {
    return d.Attribute(ctx, r.ShowID, r.Seat, r.Timestamp)
}
