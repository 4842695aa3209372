// Package models defines the cooldown limiter types.
package models

import (
	"fmt"

	"github.com/google/uuid"
)

// Action names a rate-limited operation. Each (action, user) pair owns an
// independent cooldown window.
type Action string

// ActionRefresh guards the full recommendation recompute.
const ActionRefresh Action = "recommend_refresh"

// Decision is the outcome of a limiter check.
type Decision struct {
	Allowed          bool
	RemainingSeconds int
}

// Key derives the backing-store key for an (action, user) pair.
func Key(action Action, userID uuid.UUID) string {
	return fmt.Sprintf("cooldown:%s:%s", action, userID)
}
