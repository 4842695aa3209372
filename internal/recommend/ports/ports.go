// Package ports declares the interfaces the recommendation service is wired
// with. Stores return sentinel errors; the service translates them into
// domain errors.
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"bokji/internal/recommend/models"
)

// Store is the durable recommendation record store.
type Store interface {
	// Upsert writes one recommendation keyed by (UserID, ProgramID). An
	// existing row keeps its id, bookmark, and viewed state; only score,
	// reasons, and updated_at are overwritten.
	Upsert(ctx context.Context, rec *models.Recommendation) error

	// FindByID returns sentinel.ErrNotFound for unknown ids.
	FindByID(ctx context.Context, id uuid.UUID) (*models.Recommendation, error)

	// FindByUser returns one page of list items plus the unpaginated total,
	// joined with program display fields and restricted to active programs.
	FindByUser(ctx context.Context, userID uuid.UUID, q models.ListQuery) ([]*models.ListItem, int, error)

	// DeleteAllForUser removes every recommendation of a user. Called at
	// the start of each refresh; the recompute is replace-all.
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error

	// ToggleBookmark flips the bookmark flag and returns the updated
	// recommendation. Toggling a missing recommendation is a no-op
	// returning (nil, nil).
	ToggleBookmark(ctx context.Context, userID, programID uuid.UUID) (*models.Recommendation, error)

	// MarkViewed stamps the viewed time on a recommendation owned by the
	// user. Returns sentinel.ErrNotFound when no such row exists.
	MarkViewed(ctx context.Context, id, userID uuid.UUID, at time.Time) error

	// CountByCategory returns facet counts over the user's recommendations
	// for active programs.
	CountByCategory(ctx context.Context, userID uuid.UUID) (map[string]int, error)
}

// Cache is the best-effort list response cache. Implementations must degrade
// silently: an unreachable backend means Get misses, Set and invalidation
// no-op, and no error reaches the caller.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	InvalidateUser(ctx context.Context, userID uuid.UUID) error
	DeleteByPattern(ctx context.Context, pattern string) (int, error)
}
