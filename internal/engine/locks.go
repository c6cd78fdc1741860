package engine

import (
	"sync"

	"github.com/google/uuid"
)

// SessionLocks serializes work per session. A session has exactly one
// writer at a time: a turn in flight excludes saves, loads, and other
// turns for the same ID, while distinct sessions proceed concurrently.
type SessionLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewSessionLocks creates an empty lock table.
func NewSessionLocks() *SessionLocks {
	return &SessionLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

// Lock acquires the session's lock and returns its unlock func.
func (s *SessionLocks) Lock(id uuid.UUID) func() {
	s.mu.Lock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// Forget drops a finished session's lock entry.
func (s *SessionLocks) Forget(id uuid.UUID) {
	s.mu.Lock()
	delete(s.locks, id)
	s.mu.Unlock()
}
