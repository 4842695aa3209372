package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// Store persists history entries.
type Store interface {
	Append(ctx context.Context, entry Entry) error
}

// PostgresStore appends history rows. No update or delete paths exist.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres creates a Postgres-backed history store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, entry Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recommendation_history (id, user_id, program_id, match_score, action, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.UserID, entry.ProgramID, entry.MatchScore, entry.Action, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	return nil
}

// MemoryStore collects entries in memory for tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewMemory creates an empty in-memory history store.
func NewMemory() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

// Entries returns a copy of everything appended so far.
func (s *MemoryStore) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}
