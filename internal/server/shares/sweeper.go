package shares

import (
	"context"
	"time"

	"github.com/avolkovs/keepsake/internal/logging"
)

// Sweeper periodically removes expired shares. Failures are logged and the
// loop moves on; one bad row never aborts a sweep batch.
type Sweeper struct {
	service  *Service
	logger   logging.Logger
	interval time.Duration
}

func NewSweeper(service *Service, logger logging.Logger, interval time.Duration) *Sweeper {
	return &Sweeper{service: service, logger: logger, interval: interval}
}

// Run blocks until ctx is cancelled, sweeping on every tick.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.service.SweepExpired(ctx)
			if err != nil {
				s.logger.Error(ctx, "share sweep error", "error", err)
			}
			if removed > 0 {
				s.logger.Info(ctx, "swept expired shares", "removed", removed)
			}
		}
	}
}
