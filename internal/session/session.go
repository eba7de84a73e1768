// Package session keeps one view coordinator per browser session and drives
// its record load in the background.
package session

import (
	"sync"
	"time"

	"github.com/JonMunkholm/usertable/internal/core"
	"github.com/google/uuid"
)

// Session owns a coordinator. Every event is applied under the session
// mutex, so events from one browser are processed one at a time and never
// interleave with the load completing.
type Session struct {
	ID      uuid.UUID
	Created time.Time

	mu    sync.Mutex
	coord *core.Coordinator

	// lastSeen is guarded by the registry mutex.
	lastSeen time.Time
}

func newSession(id uuid.UUID, now time.Time) *Session {
	return &Session{
		ID:       id,
		Created:  now,
		coord:    core.NewCoordinator(),
		lastSeen: now,
	}
}

// Apply runs fn with exclusive access to the coordinator and returns the
// view afterwards along with fn's result.
func (s *Session) Apply(fn func(c *core.Coordinator) bool) (core.View, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := fn(s.coord)
	return s.coord.View(), changed
}

// View returns the current snapshot.
func (s *Session) View() core.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coord.View()
}

// Sorted returns the full filtered and sorted sequence.
func (s *Session) Sorted() []core.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coord.Sorted()
}

// Status returns the load status.
func (s *Session) Status() core.LoadStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coord.Status()
}
