package lobby

import (
	"context"
	"log"
	"time"
)

// Scheduler runs the auto-start sweep on an interval.
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
				if err := s.service.CheckAndStartLobbies(ctx); err != nil {
					log.Printf("Lobby auto-start sweep failed: %v", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
