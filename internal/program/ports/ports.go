// Package ports declares the program catalog interfaces consumed by the
// recommendation core.
package ports

import (
	"context"

	"github.com/google/uuid"

	"bokji/internal/program/models"
)

// Catalog is the read surface of the welfare program catalog. Program
// authoring lives outside this core.
type Catalog interface {
	// FindAllActive returns every active program, oldest first, so matching
	// output order is stable across runs.
	FindAllActive(ctx context.Context) ([]*models.WelfareProgram, error)
	// FindByID returns sentinel.ErrNotFound when the program does not exist.
	FindByID(ctx context.Context, id uuid.UUID) (*models.WelfareProgram, error)
	// IncrementViewCount bumps the popularity counter used by the
	// popularity sort option.
	IncrementViewCount(ctx context.Context, id uuid.UUID) error
}
