// Package snapshot holds the last value produced by a listing call.
package snapshot

import (
	"sync"
	"time"
)

// Store is a size-one, process-wide slot. Readers see either the previous or
// the new value, never a partially written one.
type Store[T any] struct {
	mu        sync.RWMutex
	value     T
	set       bool
	updatedAt time.Time
}

// New returns an empty store.
func New[T any]() *Store[T] {
	return &Store[T]{}
}

// Replace overwrites the stored value.
func (s *Store[T]) Replace(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = v
	s.set = true
	s.updatedAt = time.Now()
}

// Load returns the stored value and whether any value was ever stored.
func (s *Store[T]) Load() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.set
}

// UpdatedAt is the time of the last Replace, zero if never replaced.
func (s *Store[T]) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}
