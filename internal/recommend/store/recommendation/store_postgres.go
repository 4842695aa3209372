// Package recommendation implements the durable recommendation store.
package recommendation

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bokji/internal/matching"
	"bokji/internal/recommend/models"
	"bokji/pkg/platform/sentinel"
	txcontext "bokji/pkg/platform/tx"
)

// PostgresStore persists recommendations. The (user_id, program_id) unique
// constraint is the upsert key; refresh write paths run inside a context
// transaction so delete-all and the reinserts commit together.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres creates a Postgres-backed recommendation store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) execer(ctx context.Context) txcontext.Querier {
	return txcontext.Executor(ctx, s.db)
}

func (s *PostgresStore) Upsert(ctx context.Context, rec *models.Recommendation) error {
	reasons, err := json.Marshal(rec.Reasons)
	if err != nil {
		return fmt.Errorf("marshal match reasons: %w", err)
	}

	id := rec.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	now := time.Now().UTC()

	// Bookmark and viewed state survive upserts on existing rows; only a
	// full delete-all resets them.
	query := `
		INSERT INTO recommendations (id, user_id, program_id, match_score, match_reasons,
		                             is_bookmarked, viewed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, NULL, $6, $6)
		ON CONFLICT (user_id, program_id) DO UPDATE
		SET match_score = EXCLUDED.match_score,
		    match_reasons = EXCLUDED.match_reasons,
		    updated_at = EXCLUDED.updated_at`

	if _, err := s.execer(ctx).ExecContext(ctx, query,
		id, rec.UserID, rec.ProgramID, rec.MatchScore, reasons, now,
	); err != nil {
		return fmt.Errorf("upsert recommendation: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Recommendation, error) {
	query := `
		SELECT id, user_id, program_id, match_score, match_reasons,
		       is_bookmarked, viewed_at, created_at, updated_at
		FROM recommendations
		WHERE id = $1`

	var (
		rec        models.Recommendation
		reasonsRaw []byte
		viewedAt   sql.NullTime
	)
	err := s.execer(ctx).QueryRowContext(ctx, query, id).Scan(
		&rec.ID, &rec.UserID, &rec.ProgramID, &rec.MatchScore, &reasonsRaw,
		&rec.IsBookmarked, &viewedAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query recommendation: %w", err)
	}
	if viewedAt.Valid {
		t := viewedAt.Time
		rec.ViewedAt = &t
	}
	if len(reasonsRaw) > 0 {
		if err := json.Unmarshal(reasonsRaw, &rec.Reasons); err != nil {
			return nil, fmt.Errorf("decode match reasons: %w", err)
		}
	}
	return &rec, nil
}

func (s *PostgresStore) FindByUser(ctx context.Context, userID uuid.UUID, q models.ListQuery) ([]*models.ListItem, int, error) {
	where := `r.user_id = $1 AND p.is_active = TRUE`
	args := []any{userID}
	if q.Category != "" {
		where += ` AND p.category = $2`
		args = append(args, q.Category)
	}

	var total int
	countQuery := `
		SELECT COUNT(*)
		FROM recommendations r
		JOIN welfare_programs p ON p.id = r.program_id
		WHERE ` + where
	if err := s.execer(ctx).QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count recommendations: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT r.id, r.program_id, p.name, p.category, r.match_score, r.match_reasons,
		       r.is_bookmarked, r.viewed_at, p.application_end_date, p.view_count, r.updated_at
		FROM recommendations r
		JOIN welfare_programs p ON p.id = r.program_id
		WHERE %s
		ORDER BY %s
		LIMIT %d OFFSET %d`,
		where, orderClause(q.SortBy), q.Limit, q.Offset())

	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query recommendations: %w", err)
	}
	defer rows.Close()

	var items []*models.ListItem
	for rows.Next() {
		var (
			item       models.ListItem
			reasonsRaw []byte
			viewedAt   sql.NullTime
			endDate    sql.NullTime
		)
		if err := rows.Scan(
			&item.ID, &item.ProgramID, &item.ProgramName, &item.Category,
			&item.MatchScore, &reasonsRaw, &item.IsBookmarked, &viewedAt,
			&endDate, &item.ProgramViewCount, &item.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan recommendation row: %w", err)
		}
		if viewedAt.Valid {
			t := viewedAt.Time
			item.ViewedAt = &t
		}
		if endDate.Valid {
			t := endDate.Time
			item.ApplicationEndDate = &t
		}
		if len(reasonsRaw) > 0 {
			if err := json.Unmarshal(reasonsRaw, &item.Reasons); err != nil {
				return nil, 0, fmt.Errorf("decode match reasons: %w", err)
			}
		}
		if item.Reasons == nil {
			item.Reasons = []matching.MatchReason{}
		}
		items = append(items, &item)
	}
	return items, total, rows.Err()
}

// orderClause maps sort options to SQL. Only known SortBy values reach here;
// ListQuery.Normalize rejects everything else, so no user input is spliced.
func orderClause(sortBy models.SortBy) string {
	switch sortBy {
	case models.SortByLatest:
		return `p.created_at DESC, r.id ASC`
	case models.SortByDeadline:
		return `p.application_end_date ASC NULLS LAST, r.id ASC`
	case models.SortByPopularity:
		return `p.view_count DESC, r.id ASC`
	default:
		return `r.match_score DESC, p.created_at ASC, r.id ASC`
	}
}

func (s *PostgresStore) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.execer(ctx).ExecContext(ctx,
		`DELETE FROM recommendations WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete recommendations for user: %w", err)
	}
	return nil
}

func (s *PostgresStore) ToggleBookmark(ctx context.Context, userID, programID uuid.UUID) (*models.Recommendation, error) {
	rec := models.Recommendation{UserID: userID, ProgramID: programID}
	err := s.execer(ctx).QueryRowContext(ctx, `
		UPDATE recommendations
		SET is_bookmarked = NOT is_bookmarked, updated_at = NOW()
		WHERE user_id = $1 AND program_id = $2
		RETURNING id, match_score, is_bookmarked, updated_at`,
		userID, programID,
	).Scan(&rec.ID, &rec.MatchScore, &rec.IsBookmarked, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		// No recommendation to bookmark: a no-op, not an error.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("toggle bookmark: %w", err)
	}
	return &rec, nil
}

func (s *PostgresStore) MarkViewed(ctx context.Context, id, userID uuid.UUID, at time.Time) error {
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE recommendations
		SET viewed_at = $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2`,
		id, userID, at,
	)
	if err != nil {
		return fmt.Errorf("mark viewed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CountByCategory(ctx context.Context, userID uuid.UUID) (map[string]int, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT p.category, COUNT(*)
		FROM recommendations r
		JOIN welfare_programs p ON p.id = r.program_id
		WHERE r.user_id = $1 AND p.is_active = TRUE
		GROUP BY p.category`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("count by category: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			category string
			count    int
		)
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		counts[category] = count
	}
	return counts, rows.Err()
}
