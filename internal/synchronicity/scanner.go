// internal/synchronicity/scanner.go

package synchronicity

import (
	"context"
	"log"
	"sync"
	"time"
)

// Scanner manages per-user scan sessions. Each session runs an immediate
// scan and then repeats on an interval until stopped or the base context
// is cancelled. Sessions are bound to the application lifetime, not to
// the HTTP request that started them.
type Scanner struct {
	base     context.Context
	service  Service
	interval time.Duration

	mu       sync.Mutex
	sessions map[string]context.CancelFunc
}

func NewScanner(ctx context.Context, service Service, interval time.Duration) *Scanner {
	if interval <= 0 {
		interval = 2 * time.Minute
	}

	return &Scanner{
		base:     ctx,
		service:  service,
		interval: interval,
		sessions: make(map[string]context.CancelFunc),
	}
}

// Start begins a scan session for the user. Starting an already-scanning
// user restarts their session.
func (sc *Scanner) Start(userID string) {
	sc.mu.Lock()
	if cancel, ok := sc.sessions[userID]; ok {
		cancel()
	}
	sessionCtx, cancel := context.WithCancel(sc.base)
	sc.sessions[userID] = cancel
	SetActiveSessions(len(sc.sessions))
	sc.mu.Unlock()

	go sc.run(sessionCtx, userID)
}

func (sc *Scanner) run(ctx context.Context, userID string) {
	sc.scanOnce(ctx, userID)

	ticker := time.NewTicker(sc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sc.scanOnce(ctx, userID)
		case <-ctx.Done():
			return
		}
	}
}

func (sc *Scanner) scanOnce(ctx context.Context, userID string) {
	if _, err := sc.service.ScanForSynchronicities(ctx, userID); err != nil {
		log.Printf("Synchronicity scan failed for %s: %v", userID, err)
	}
}

// Stop ends the user's scan session if one is running.
func (sc *Scanner) Stop(userID string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if cancel, ok := sc.sessions[userID]; ok {
		cancel()
		delete(sc.sessions, userID)
		SetActiveSessions(len(sc.sessions))
	}
}

// IsScanning reports whether the user has a running session.
func (sc *Scanner) IsScanning(userID string) bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	_, ok := sc.sessions[userID]
	return ok
}

// StopAll cancels every session, used during shutdown.
func (sc *Scanner) StopAll() {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	for userID, cancel := range sc.sessions {
		cancel()
		delete(sc.sessions, userID)
	}
	SetActiveSessions(0)
}

// StartSweeper runs the expiry sweep that closes stale records so the
// dedup index stays accurate.
func (sc *Scanner) StartSweeper(interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := sc.service.CloseExpired(sc.base); err != nil {
					log.Printf("Synchronicity expiry sweep failed: %v", err)
				}
			case <-sc.base.Done():
				return
			}
		}
	}()
}
