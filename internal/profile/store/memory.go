// Package store provides profile source implementations.
package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"bokji/internal/profile/models"
	"bokji/pkg/platform/sentinel"
)

// Memory is an in-memory profile source for tests and local development.
type Memory struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]*models.UserProfileForMatching
}

// NewMemory creates an empty in-memory profile source.
func NewMemory() *Memory {
	return &Memory{profiles: make(map[uuid.UUID]*models.UserProfileForMatching)}
}

// Seed inserts or replaces profiles. Intended for test fixtures.
func (s *Memory) Seed(profiles ...*models.UserProfileForMatching) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range profiles {
		cp := *p
		s.profiles[p.UserID] = &cp
	}
}

func (s *Memory) GetForMatching(_ context.Context, userID uuid.UUID) (*models.UserProfileForMatching, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *p
	return &cp, nil
}
