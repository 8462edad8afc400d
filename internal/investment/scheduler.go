package investment

import (
	"context"
	"time"

	"github.com/stackvest/stackvest-backend/pkg/logger"
)

// Scheduler drives profit distribution on a fixed interval. Each tick is a
// full RunDistributions pass; idempotency lives in the repository, so an
// overlapping manual run is harmless.
type Scheduler struct {
	Service  *Service
	Interval time.Duration
}

func NewScheduler(service *Service, interval time.Duration) *Scheduler {
	return &Scheduler{Service: service, Interval: interval}
}

func (s *Scheduler) Start(ctx context.Context) {
	logger.Info("Starting profit distribution scheduler", logger.Fields{
		"interval": s.Interval.String(),
	})
	go func() {
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				logger.Info("Profit distribution scheduler stopped")
				return
			case now := <-ticker.C:
				if _, err := s.Service.RunDistributions(ctx, now); err != nil {
					logger.Error("Distribution run failed", logger.WithError(err))
				}
			}
		}
	}()
}
