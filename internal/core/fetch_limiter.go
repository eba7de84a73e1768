package core

// fetch_limiter.go caps how many sessions may fetch records from the
// upstream source at the same time. A session that cannot get a slot
// within the wait budget fails its load with ErrTooManyFetches; there is
// no automatic retry.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrTooManyFetches is returned when every fetch slot stays busy for the
// whole wait budget.
var ErrTooManyFetches = errors.New("too many concurrent fetches")

// Limiter defaults used when the configured values are not positive.
const (
	DefaultMaxConcurrentFetches = 4
	DefaultFetchWait            = 30 * time.Second
)

// FetchLimiter is a counting semaphore around upstream fetches.
type FetchLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	active  atomic.Int32
}

// NewFetchLimiter allows at most maxConcurrent fetches at once.
func NewFetchLimiter(maxConcurrent int, maxWait time.Duration) *FetchLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentFetches
	}
	if maxWait <= 0 {
		maxWait = DefaultFetchWait
	}
	return &FetchLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire blocks until a slot is free, ctx ends, or the wait budget runs out.
// Every successful Acquire must be paired with exactly one Release.
func (l *FetchLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyFetches
	}
}

// Release frees a slot taken by Acquire.
func (l *FetchLimiter) Release() {
	l.active.Add(-1)
	<-l.slots
}

// Active returns the number of fetches currently holding a slot.
func (l *FetchLimiter) Active() int {
	return int(l.active.Load())
}

// MaxConcurrent returns the slot count.
func (l *FetchLimiter) MaxConcurrent() int {
	return cap(l.slots)
}

// WaitForDrain blocks until no fetch holds a slot or ctx ends.
func (l *FetchLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for l.Active() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// FetchLimiterStatus is a point-in-time view of the limiter.
type FetchLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the limiter state for health reporting.
func (l *FetchLimiter) Status() FetchLimiterStatus {
	return FetchLimiterStatus{
		Active:        l.Active(),
		Available:     cap(l.slots) - len(l.slots),
		MaxConcurrent: cap(l.slots),
	}
}
