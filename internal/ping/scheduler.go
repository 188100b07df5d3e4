package ping

import (
	"context"
	"log"
	"time"
)

// Scheduler runs the ping expiry sweep on an interval.
type Scheduler struct {
	service  Service
	interval time.Duration
}

func NewScheduler(service Service, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{service: service, interval: interval}
}

func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := s.service.ExpireOldPings(ctx); err != nil {
					log.Printf("Ping expiry sweep failed: %v", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
