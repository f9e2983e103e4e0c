package memstore

import (
    "context"
    "sync"

    "github.com/iliyamo/auditorium-seat-reservation/internal/model"
    "github.com/iliyamo/auditorium-seat-reservation/internal/repository"
)

// ShowStore is an in-memory show catalog.
type ShowStore struct {
    mu    sync.RWMutex
    shows map[string]model.Show
}

func NewShowStore() *ShowStore {
    return &ShowStore{shows: map[string]model.Show{}}
}

func (s *ShowStore) GetShow(_ context.Context, showID string) (*model.Show, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    show, ok := s.shows[showID]
    if !ok {
        return nil, repository.ErrNotFound
    }
    show.DamagedSeats = append([]model.SeatCode(nil), show.DamagedSeats...)
    return &show, nil
}

func (s *ShowStore) UpsertShow(_ context.Context, show model.Show) error {
    show.DamagedSeats = append([]model.SeatCode(nil), show.DamagedSeats...)
    s.mu.Lock()
    s.shows[show.ID] = show
    s.mu.Unlock()
    return nil
}
