package model

import (
    "encoding/json"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestParseSeatCode(t *testing.T) {
    cases := []struct {
        raw  string
        want SeatCode
        ok   bool
    }{
        {raw: "A-1", want: SeatCode{Row: 0, Col: 1}, ok: true},
        {raw: "a1", want: SeatCode{Row: 0, Col: 1}, ok: true},
        {raw: " C-12 ", want: SeatCode{Row: 2, Col: 12}, ok: true},
        {raw: "Z-3", want: SeatCode{Row: 25, Col: 3}, ok: true},
        {raw: "AA-2", want: SeatCode{Row: 26, Col: 2}, ok: true},
        {raw: "AB2", want: SeatCode{Row: 27, Col: 2}, ok: true},
        {raw: "A-0"},
        {raw: "A-"},
        {raw: "1-A"},
        {raw: ""},
        {raw: "A--1"},
    }
    for _, tc := range cases {
        t.Run(tc.raw, func(t *testing.T) {
            got, err := ParseSeatCode(tc.raw)
            if !tc.ok {
                assert.ErrorIs(t, err, ErrInvalidSeatCode)
                return
            }
            require.NoError(t, err)
            assert.Equal(t, tc.want, got)
        })
    }
}

func TestSeatCodeCanonicalForm(t *testing.T) {
    for _, raw := range []string{"A-1", "Z-26", "AA-1", "AZ-9", "BA-10"} {
        assert.Equal(t, raw, MustSeat(raw).String())
    }

    b, err := json.Marshal(struct {
        Seat SeatCode `json:"seat"`
    }{MustSeat("b7")})
    require.NoError(t, err)
    assert.JSONEq(t, `{"seat":"B-7"}`, string(b))

    var back struct {
        Seat SeatCode `json:"seat"`
    }
    require.NoError(t, json.Unmarshal(b, &back))
    assert.Equal(t, MustSeat("B-7"), back.Seat)
}

func TestShowSeatRules(t *testing.T) {
    s := Show{Rows: 2, Cols: 3, Gender: GenderFemale, DamagedSeats: []SeatCode{MustSeat("B-3")}}

    assert.True(t, s.HasSeat(MustSeat("A-1")))
    assert.True(t, s.HasSeat(MustSeat("B-3")))
    assert.False(t, s.HasSeat(MustSeat("C-1")))
    assert.False(t, s.HasSeat(MustSeat("A-4")))

    assert.True(t, s.IsDamaged(MustSeat("B-3")))
    assert.False(t, s.IsDamaged(MustSeat("B-2")))

    assert.True(t, s.Admits(GenderFemale))
    assert.False(t, s.Admits(GenderMale))
    assert.False(t, s.Admits(""))
}

func TestOccupancyCovers(t *testing.T) {
    from := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
    to := from.Add(time.Hour)
    now := from.Add(2 * time.Hour)

    closed := Occupancy{ClaimedAt: from, ReleasedAt: &to}
    assert.True(t, closed.Covers(from, now))
    assert.True(t, closed.Covers(to.Add(-time.Millisecond), now))
    assert.False(t, closed.Covers(to, now))
    assert.False(t, closed.Covers(from.Add(-time.Millisecond), now))

    open := Occupancy{ClaimedAt: from}
    assert.True(t, open.Covers(now.Add(-time.Millisecond), now))
    assert.True(t, open.Covers(now, now))
    assert.True(t, open.Covers(from, now))
    assert.False(t, open.Covers(now.Add(time.Millisecond), now))
    assert.False(t, open.Covers(from.Add(-time.Millisecond), now))
}
