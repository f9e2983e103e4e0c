package service

//go:generate mockgen -source=events.go -destination=mocks/mock_events.go -package=mocks

import (
    "context"

    "github.com/iliyamo/auditorium-seat-reservation/internal/queue"
)

// EventPublisher receives lifecycle events.  Failures are logged by the
// caller and never fail the operation.
type EventPublisher interface {
    Publish(ctx context.Context, ev queue.Event) error
}

var (
    _ EventPublisher = (*queue.Publisher)(nil)
    _ EventPublisher = (*queue.LogPublisher)(nil)
)
