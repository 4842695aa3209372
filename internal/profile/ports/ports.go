// Package ports declares the profile collaborator interface.
package ports

import (
	"context"

	"github.com/google/uuid"

	"bokji/internal/profile/models"
)

// Source exposes profiles in their matching projection.
type Source interface {
	// GetForMatching returns sentinel.ErrNotFound when the user has no
	// profile yet; a refresh for such a user must fail, not match nothing.
	GetForMatching(ctx context.Context, userID uuid.UUID) (*models.UserProfileForMatching, error)
}
