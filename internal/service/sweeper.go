package service

import (
    "context"
    "time"

    "github.com/sirupsen/logrus"
)

// HoldSweeper periodically reclaims pending bookings whose hold expired so
// that abandoned seats return to free without waiting for a new claim.
type HoldSweeper struct {
    manager  *BookingManager
    interval time.Duration
    batch    int
    logger   *logrus.Logger
}

func NewHoldSweeper(manager *BookingManager, interval time.Duration, batch int, logger *logrus.Logger) *HoldSweeper {
    if interval <= 0 {
        interval = 30 * time.Second
    }
    if batch <= 0 {
        batch = 100
    }
    return &HoldSweeper{manager: manager, interval: interval, batch: batch, logger: logger}
}

// Run sweeps once per interval until ctx is cancelled.
func (s *HoldSweeper) Run(ctx context.Context) error {
    ticker := time.NewTicker(s.interval)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            return nil
        case <-ticker.C:
            s.Sweep(ctx)
        }
    }
}

// Sweep reclaims expired holds in batches until a batch comes back short.
func (s *HoldSweeper) Sweep(ctx context.Context) int {
    total := 0
    for {
        n, err := s.manager.ReclaimExpired(ctx, s.batch)
        total += n
        if err != nil {
            if ctx.Err() == nil {
                s.logger.WithContext(ctx).WithError(err).Warn("hold sweep failed")
            }
            return total
        }
        if n < s.batch {
            break
        }
    }
    if total > 0 {
        s.logger.WithContext(ctx).WithField("reclaimed", total).Info("hold sweep finished")
    }
    return total
}
