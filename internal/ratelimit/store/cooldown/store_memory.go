package cooldown

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements the cooldown store in process memory. Used by unit
// tests and single-instance deployments without Redis.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

type window struct {
	count     int
	expiresAt time.Time
}

// NewMemory creates an empty in-memory cooldown store.
func NewMemory() *MemoryStore {
	return &MemoryStore{windows: make(map[string]*window), now: time.Now}
}

// SetClock overrides the clock for window-expiry tests.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStore) Acquire(_ context.Context, key string, windowLen time.Duration, maxRequests int) (bool, time.Duration, error) {
	if maxRequests < 1 {
		maxRequests = 1
	}

	// The whole check-and-consume runs under one lock, matching the
	// atomicity the Redis implementation gets from SET NX.
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	w, ok := s.windows[key]
	if !ok || now.After(w.expiresAt) {
		s.windows[key] = &window{count: 1, expiresAt: now.Add(windowLen)}
		return true, 0, nil
	}

	if w.count < maxRequests {
		w.count++
		return true, 0, nil
	}
	return false, w.expiresAt.Sub(now), nil
}
