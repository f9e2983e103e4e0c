package model

import (
    "errors"
    "strconv"
    "strings"
)

// ErrInvalidSeatCode is returned when a seat code cannot be parsed.
var ErrInvalidSeatCode = errors.New("invalid seat code")

// SeatCode is a coordinate into a show's seat grid.  Row is zero-based and
// rendered as letters (A, B, ..., Z, AA, ...); Col is one-based.  The
// canonical text form is "A-1".  A seat is not a stored entity on its own;
// it is the key into the seat ledger together with the show ID.
type SeatCode struct {
    Row int
    Col int
}

// String renders the canonical "A-1" form.
func (c SeatCode) String() string {
    return indexToRowLabel(c.Row) + "-" + strconv.Itoa(c.Col)
}

// ParseSeatCode accepts "A-1", "a1" or "AA-12" and returns the coordinate.
func ParseSeatCode(raw string) (SeatCode, error) {
    s := strings.ToUpper(strings.TrimSpace(raw))
    i := 0
    for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
        i++
    }
    if i == 0 {
        return SeatCode{}, ErrInvalidSeatCode
    }
    row, ok := rowLabelToIndex(s[:i])
    if !ok {
        return SeatCode{}, ErrInvalidSeatCode
    }
    rest := strings.TrimPrefix(s[i:], "-")
    col, err := strconv.Atoi(rest)
    if err != nil || col < 1 {
        return SeatCode{}, ErrInvalidSeatCode
    }
    return SeatCode{Row: row, Col: col}, nil
}

// MustSeat is ParseSeatCode for literals known to be valid.  It panics on
// malformed input.
func MustSeat(raw string) SeatCode {
    c, err := ParseSeatCode(raw)
    if err != nil {
        panic(err)
    }
    return c
}

func (c SeatCode) MarshalText() ([]byte, error) {
    return []byte(c.String()), nil
}

func (c *SeatCode) UnmarshalText(b []byte) error {
    parsed, err := ParseSeatCode(string(b))
    if err != nil {
        return err
    }
    *c = parsed
    return nil
}

// indexToRowLabel converts a zero-based index to an alphabetical row label like A, B, AA
func indexToRowLabel(i int) string {
    if i < 0 {
        return ""
    }
    res := []rune{}
    for {
        rem := i % 26
        res = append(res, rune('A'+rem))
        i = i/26 - 1
        if i < 0 {
            break
        }
    }
    for j, k := 0, len(res)-1; j < k; j, k = j+1, k-1 {
        res[j], res[k] = res[k], res[j]
    }
    return string(res)
}

// rowLabelToIndex converts a row label like A or AA into its zero-based index
func rowLabelToIndex(label string) (int, bool) {
    if label == "" {
        return -1, false
    }
    n := 0
    for i := 0; i < len(label); i++ {
        ch := label[i]
        if ch < 'A' || ch > 'Z' {
            return -1, false
        }
        n = n*26 + int(ch-'A'+1)
    }
    return n - 1, true
}
