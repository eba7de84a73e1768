package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/JonMunkholm/usertable/internal/core"
	"github.com/JonMunkholm/usertable/internal/logging"
	"github.com/JonMunkholm/usertable/internal/metrics"
	"github.com/JonMunkholm/usertable/internal/source"
	"github.com/google/uuid"
)

// Options configures a Registry. Zero values fall back to defaults.
type Options struct {
	Source  source.Source
	Limiter *core.FetchLimiter
	Metrics *metrics.Metrics

	// FetchTimeout bounds one fetch; 0 means no timeout.
	FetchTimeout time.Duration

	// IdleTTL evicts sessions without requests for this long (default: 30m).
	IdleTTL time.Duration

	// Now is the clock, overridable in tests.
	Now func() time.Time
}

// DefaultIdleTTL is used when Options.IdleTTL is not positive.
const DefaultIdleTTL = 30 * time.Minute

// closeGrace bounds the wait for cancelled loads after Shutdown gives up.
const closeGrace = 5 * time.Second

// ErrShuttingDown fails loads requested after Shutdown has started.
var ErrShuttingDown = errors.New("server is shutting down")

// Registry maps session ids to sessions and runs their loads.
type Registry struct {
	src      source.Source
	limiter  *core.FetchLimiter
	metrics  *metrics.Metrics
	timeout  time.Duration
	idleTTL  time.Duration
	now      func() time.Time
	loadCtx  context.Context
	stopLoad context.CancelFunc
	loads    sync.WaitGroup

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	draining bool
}

// NewRegistry returns an empty registry.
func NewRegistry(opts Options) *Registry {
	if opts.Limiter == nil {
		opts.Limiter = core.NewFetchLimiter(0, 0)
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = DefaultIdleTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		src:      opts.Source,
		limiter:  opts.Limiter,
		metrics:  opts.Metrics,
		timeout:  opts.FetchTimeout,
		idleTTL:  opts.IdleTTL,
		now:      opts.Now,
		loadCtx:  ctx,
		stopLoad: cancel,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Get returns the session for id and marks it as seen.
func (r *Registry) Get(id uuid.UUID) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if ok {
		s.lastSeen = r.now()
	}
	return s, ok
}

// Resolve returns the session named by a cookie value, creating a new one
// (and starting its load) when the value is empty, malformed or unknown.
func (r *Registry) Resolve(cookie string) (s *Session, created bool) {
	if id, err := uuid.Parse(cookie); err == nil {
		if s, ok := r.Get(id); ok {
			return s, false
		}
	}
	return r.Create(), true
}

// Create registers a new session and starts its first load.
func (r *Registry) Create() *Session {
	s := newSession(uuid.New(), r.now())

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	r.metrics.SessionStarted()
	slog.Debug("session created", "session_id", s.ID.String())

	s.mu.Lock()
	r.startLoad(s)
	s.mu.Unlock()
	return s
}

// Reload discards the session's records and fetches them again. It is a
// no-op while a load is pending.
func (r *Registry) Reload(s *Session) (core.View, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.coord.Reload() {
		return s.coord.View(), false
	}
	r.startLoad(s)
	return s.coord.View(), true
}

// startLoad fetches in the background and completes the pending load.
// The caller holds s.mu.
func (r *Registry) startLoad(s *Session) {
	ctx := logging.WithSessionID(r.loadCtx, s.ID.String())

	r.mu.Lock()
	if r.draining {
		r.mu.Unlock()
		s.coord.Failed(ErrShuttingDown)
		r.metrics.LoadFinished("failed", 0, 0)
		return
	}
	r.loads.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.loads.Done()

		start := time.Now()
		records, err := r.fetch(ctx)
		elapsed := time.Since(start)
		log := logging.FromContext(ctx)

		s.mu.Lock()
		defer s.mu.Unlock()
		if err != nil {
			s.coord.Failed(err)
			r.metrics.LoadFinished("failed", 0, elapsed)
			level := slog.LevelError
			if core.IsUserFacing(err) {
				level = slog.LevelWarn
			}
			log.Log(ctx, level, "record load failed",
				"error", err,
				"code", core.MapError(err).Code,
				"duration_ms", elapsed.Milliseconds(),
			)
			return
		}
		s.coord.Loaded(records)
		r.metrics.LoadFinished("ready", len(records), elapsed)
		log.Info("records loaded",
			"records", len(records),
			"duration_ms", elapsed.Milliseconds(),
		)
	}()
}

func (r *Registry) fetch(ctx context.Context) ([]core.Record, error) {
	if err := r.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer r.limiter.Release()
	r.metrics.FetchStarted()
	defer r.metrics.FetchDone()

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return r.src.Fetch(ctx)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep evicts sessions idle for longer than the TTL and returns how many
// were removed. A load still running for an evicted session completes
// against the orphaned coordinator.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	removed := 0
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	r.mu.Unlock()

	r.metrics.SessionsEvicted(removed)
	return removed
}

// Wait blocks until every started load has completed or ctx ends.
func (r *Registry) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.loads.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels in-flight loads. Sessions they belong to end up failed.
func (r *Registry) Close() {
	r.stopLoad()
}

// Shutdown stops new loads, waits for running ones until ctx ends, then
// cancels whatever is left and waits briefly for it to return. Loads
// requested after Shutdown starts fail with ErrShuttingDown.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.draining = true
	r.mu.Unlock()

	err := r.Wait(ctx)
	r.Close()
	if err != nil {
		graceCtx, cancel := context.WithTimeout(context.Background(), closeGrace)
		defer cancel()
		if werr := r.Wait(graceCtx); werr != nil {
			slog.Warn("loads still running after cancel", "error", werr)
		}
	}
	return err
}
