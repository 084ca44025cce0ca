package telemetry

import (
	"sync"
	"time"
)

// Store holds the single shared machine state. The link manager is the only
// writer; loops, the chart sampler, the recorder, and the admin surface read
// snapshots. Timer and transport callbacks run on real goroutines, so access
// is serialized with a mutex.
type Store struct {
	mu    sync.Mutex
	state State
}

// NewStore returns an empty, unlinked store.
func NewStore() *Store {
	return &Store{}
}

// Apply merges a normalized update into the state and marks it linked.
func (s *Store) Apply(u Update, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.Speed != nil {
		s.state.Speed = *u.Speed
	}
	if u.Incline != nil {
		s.state.Incline = *u.Incline
	}
	s.state.ObservedAt = at
	s.state.Linked = true
}

// SetLinked flips the linked flag without touching the last readings.
func (s *Store) SetLinked(linked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Linked = linked
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
