// Package catalog loads the show catalog from a YAML file and imports it
// into the show store at startup.  Shows are immutable once imported.
package catalog

import (
    "context"
    "fmt"
    "os"

    "github.com/sirupsen/logrus"
    "gopkg.in/yaml.v3"

    "github.com/iliyamo/auditorium-seat-reservation/internal/model"
)

// File is the on-disk catalog layout.
//
//	shows:
//	  - id: orientation-m
//	    title: Orientation
//	    date: "2026-04-10"
//	    time: "18:00"
//	    rows: 10
//	    cols: 12
//	    gender: MALE
//	    damaged_seats: [B-2, C-7]
type File struct {
    Shows []ShowEntry `yaml:"shows"`
}

type ShowEntry struct {
    ID           string   `yaml:"id"`
    Title        string   `yaml:"title"`
    Date         string   `yaml:"date"`
    Time         string   `yaml:"time"`
    Rows         int      `yaml:"rows"`
    Cols         int      `yaml:"cols"`
    Gender       string   `yaml:"gender"`
    DamagedSeats []string `yaml:"damaged_seats"`
}

// Sink receives imported shows.
type Sink interface {
    UpsertShow(ctx context.Context, s model.Show) error
}

// LoadFile reads and validates a catalog file.
func LoadFile(path string) ([]model.Show, error) {
    data, err := os.ReadFile(path)
    if err != nil {
        return nil, fmt.Errorf("failed to read catalog file: %w", err)
    }
    return Parse(data)
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) ([]model.Show, error) {
    var f File
    if err := yaml.Unmarshal(data, &f); err != nil {
        return nil, fmt.Errorf("failed to parse catalog file: %w", err)
    }
    seen := make(map[string]bool, len(f.Shows))
    shows := make([]model.Show, 0, len(f.Shows))
    for i, e := range f.Shows {
        s, err := e.toShow()
        if err != nil {
            return nil, fmt.Errorf("show #%d: %w", i+1, err)
        }
        if seen[s.ID] {
            return nil, fmt.Errorf("show %q: duplicate id", s.ID)
        }
        seen[s.ID] = true
        shows = append(shows, s)
    }
    return shows, nil
}

func (e ShowEntry) toShow() (model.Show, error) {
    if e.ID == "" {
        return model.Show{}, fmt.Errorf("id is required")
    }
    if e.Rows <= 0 || e.Cols <= 0 {
        return model.Show{}, fmt.Errorf("show %q: rows and cols must be positive", e.ID)
    }
    g, ok := model.ParseGender(e.Gender)
    if !ok {
        return model.Show{}, fmt.Errorf("show %q: unknown gender %q (supported: MALE, FEMALE)", e.ID, e.Gender)
    }
    s := model.Show{ID: e.ID, Title: e.Title, Date: e.Date, Time: e.Time, Rows: e.Rows, Cols: e.Cols, Gender: g}
    dup := map[model.SeatCode]bool{}
    for _, raw := range e.DamagedSeats {
        code, err := model.ParseSeatCode(raw)
        if err != nil {
            return model.Show{}, fmt.Errorf("show %q: damaged seat %q: %w", e.ID, raw, err)
        }
        if !s.HasSeat(code) {
            return model.Show{}, fmt.Errorf("show %q: damaged seat %s is outside the %dx%d grid", e.ID, code, e.Rows, e.Cols)
        }
        if dup[code] {
            continue
        }
        dup[code] = true
        s.DamagedSeats = append(s.DamagedSeats, code)
    }
    return s, nil
}

// Import writes every show to sink.
func Import(ctx context.Context, sink Sink, shows []model.Show, logger *logrus.Logger) error {
    for _, s := range shows {
        if err := sink.UpsertShow(ctx, s); err != nil {
            return fmt.Errorf("import show %q: %w", s.ID, err)
        }
    }
    logger.WithField("shows", len(shows)).Info("show catalog imported")
    return nil
}
