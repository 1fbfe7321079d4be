// internal/store/memory.go
//
// In-memory registry of live game sessions.
// Sessions are process-local (they own timers and goroutines), so this map
// is the only registry the server needs.
//
// Characteristics:
//   - Stores sessions keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Tracks last access so idle sessions can be pruned and closed.
//   - ErrNotFound is returned for missing IDs on Get().

package store

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound reports an unknown or expired session ID.
var ErrNotFound = errors.New("session not found")

// Session is anything the registry can hold and release.
type Session interface {
	Close()
}

// Store defines the registry interface for live sessions.
type Store[S Session] interface {
	// Save adds or replaces a session.
	Save(ctx context.Context, id string, s S) error

	// Get retrieves a session by ID and marks it as used.
	// Returns ErrNotFound if the session is missing.
	Get(ctx context.Context, id string) (S, error)

	// Delete closes and removes a session.
	Delete(ctx context.Context, id string) error

	// Prune closes and removes sessions unused for longer than idle.
	// It returns how many were removed.
	Prune(ctx context.Context, idle time.Duration) int

	// Len reports how many sessions are held.
	Len() int
}

type entry[S Session] struct {
	s    S
	used time.Time
}

// memory is an in-memory map-based Store implementation.
type memory[S Session] struct {
	mu       sync.RWMutex
	sessions map[string]*entry[S]
	now      func() time.Time
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore[S Session]() Store[S] {
	return newMemory[S](time.Now)
}

func newMemory[S Session](now func() time.Time) *memory[S] {
	return &memory[S]{sessions: make(map[string]*entry[S]), now: now}
}

func (m *memory[S]) Save(ctx context.Context, id string, s S) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = &entry[S]{s: s, used: m.now()}
	return nil
}

// Get takes the write lock because it refreshes the access time.
func (m *memory[S]) Get(ctx context.Context, id string) (S, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.sessions[id]; ok {
		e.used = m.now()
		return e.s, nil
	}
	var zero S
	return zero, ErrNotFound
}

func (m *memory[S]) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	e, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	e.s.Close()
	return nil
}

func (m *memory[S]) Prune(ctx context.Context, idle time.Duration) int {
	cutoff := m.now().Add(-idle)
	var stale []S
	m.mu.Lock()
	for id, e := range m.sessions {
		if e.used.Before(cutoff) {
			stale = append(stale, e.s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	return len(stale)
}

func (m *memory[S]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
