// Package store provides the program catalog implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"bokji/internal/program/models"
	"bokji/pkg/platform/sentinel"
)

// Memory is an in-memory catalog for tests and local development.
type Memory struct {
	mu       sync.RWMutex
	programs map[uuid.UUID]*models.WelfareProgram
}

// NewMemory creates an empty in-memory catalog.
func NewMemory() *Memory {
	return &Memory{programs: make(map[uuid.UUID]*models.WelfareProgram)}
}

// Seed inserts or replaces programs. Intended for test fixtures. Tags are
// normalized on the way in so reads never see duplicates.
func (s *Memory) Seed(programs ...*models.WelfareProgram) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range programs {
		cp := *p
		cp.NormalizeTags()
		s.programs[p.ID] = &cp
	}
}

func (s *Memory) FindAllActive(_ context.Context) ([]*models.WelfareProgram, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.WelfareProgram
	for _, p := range s.programs {
		if p.IsActive {
			cp := *p
			out = append(out, &cp)
		}
	}
	// Creation order keeps matcher output deterministic for equal scores.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Memory) FindByID(_ context.Context, id uuid.UUID) (*models.WelfareProgram, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.programs[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *Memory) IncrementViewCount(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.programs[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	p.ViewCount++
	return nil
}
