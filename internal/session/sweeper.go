package session

// sweeper.go evicts idle sessions in the background. It runs one pass
// immediately, then every interval, until ctx is cancelled. A pass never
// fails the application; it only logs what it removed.

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSweepInterval is used when the configured interval is not positive.
const DefaultSweepInterval = time.Minute

// StartSweeper blocks running sweep passes until ctx ends.
func (r *Registry) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	slog.Info("session sweeper started",
		"interval", interval.String(),
		"idle_ttl", r.idleTTL.String(),
	)

	r.runSweep()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case <-ticker.C:
			r.runSweep()
		}
	}
}

// runSweep performs one eviction pass.
func (r *Registry) runSweep() {
	start := time.Now()
	removed := r.Sweep()
	if removed == 0 {
		slog.Debug("session sweep completed", "sessions", r.Len())
		return
	}
	slog.Info("evicted idle sessions",
		"sessions_evicted", removed,
		"sessions_remaining", r.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
