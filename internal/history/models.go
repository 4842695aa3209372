// Package history records the append-only audit trail of matching activity.
// History writes are strictly best-effort: they must never fail or slow the
// operation that produced them.
package history

import (
	"time"

	"github.com/google/uuid"
)

// Action describes what produced a history entry.
type Action string

const (
	ActionGenerated  Action = "generated"
	ActionBookmarked Action = "bookmarked"
	ActionViewed     Action = "viewed"
)

// Entry is one immutable history row. Entries are only ever inserted.
type Entry struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	ProgramID  uuid.UUID `json:"program_id"`
	MatchScore int       `json:"match_score"`
	Action     Action    `json:"action"`
	CreatedAt  time.Time `json:"created_at"`
}
