// Package session keeps per-session analysis state for the lifetime of an
// interview. Sessions are independent; the registry map is the only shared
// structure.
package session

import (
	"sync"
	"time"
)

type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*State
	now      func() time.Time
}

type Option func(*Registry)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		sessions: make(map[string]*State),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetOrCreate returns the session, creating a fresh one if absent. An
// existing session is never reset. The second result reports creation.
func (r *Registry) GetOrCreate(id string) (*State, bool) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok {
		return s, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok {
		return s, false
	}
	s = newState(r.now())
	r.sessions[id] = s
	return s, true
}

// Get is an alias of GetOrCreate: it creates unknown sessions.
// Use Lookup to probe without creating.
func (r *Registry) Get(id string) *State {
	s, _ := r.GetOrCreate(id)
	return s
}

// Lookup returns the session without creating it.
func (r *Registry) Lookup(id string) (*State, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	return s, ok
}

// Validate reports whether the session exists and is not cancelled.
func (r *Registry) Validate(id string) bool {
	s, ok := r.Lookup(id)
	if !ok {
		return false
	}
	s.Lock()
	defer s.Unlock()
	return !s.IsCancelled
}

// IsCancelled reports the cancellation latch; unknown sessions are not cancelled.
func (r *Registry) IsCancelled(id string) bool {
	s, ok := r.Lookup(id)
	if !ok {
		return false
	}
	s.Lock()
	defer s.Unlock()
	return s.IsCancelled
}

// Cancel latches cancellation. Unknown ids are ignored. The caller must not
// hold the session lock.
func (r *Registry) Cancel(id, reason string) {
	s, ok := r.Lookup(id)
	if !ok {
		return
	}
	s.Lock()
	defer s.Unlock()
	s.markCancelled(reason)
}

// Delete drops the session; a later GetOrCreate starts fresh.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Duration is the time since the session started, false for unknown ids.
func (r *Registry) Duration(id string) (time.Duration, bool) {
	s, ok := r.Lookup(id)
	if !ok {
		return 0, false
	}
	s.Lock()
	start := s.StartTime
	s.Unlock()
	return r.now().Sub(start), true
}

// Len returns the number of tracked sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
