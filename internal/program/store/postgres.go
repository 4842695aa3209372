package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"bokji/internal/program/models"
	"bokji/pkg/platform/sentinel"
)

// Postgres reads the welfare program catalog. Eligibility criteria are
// stored as a JSONB document since they are immutable once published and
// only ever read whole.
type Postgres struct {
	db *sql.DB
}

// NewPostgres creates a Postgres-backed catalog.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const programColumns = `
	id, name, category, criteria, is_active, view_count, bookmark_count,
	application_end_date, tags, created_at, updated_at
`

func (s *Postgres) FindAllActive(ctx context.Context) ([]*models.WelfareProgram, error) {
	query := `SELECT ` + programColumns + `
		FROM welfare_programs
		WHERE is_active = TRUE
		ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query active programs: %w", err)
	}
	defer rows.Close()

	var out []*models.WelfareProgram
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Postgres) FindByID(ctx context.Context, id uuid.UUID) (*models.WelfareProgram, error) {
	query := `SELECT ` + programColumns + ` FROM welfare_programs WHERE id = $1`

	p, err := scanProgram(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Postgres) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE welfare_programs SET view_count = view_count + 1, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment view count: %w", err)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProgram(row rowScanner) (*models.WelfareProgram, error) {
	var (
		p           models.WelfareProgram
		criteriaRaw []byte
		endDate     sql.NullTime
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Category, &criteriaRaw, &p.IsActive,
		&p.ViewCount, &p.BookmarkCount, &endDate, pq.Array(&p.Tags),
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if endDate.Valid {
		t := endDate.Time
		p.ApplicationEndDate = &t
	}
	if len(criteriaRaw) > 0 {
		if err := json.Unmarshal(criteriaRaw, &p.Criteria); err != nil {
			return nil, fmt.Errorf("decode criteria for program %s: %w", p.ID, err)
		}
	}
	return &p, nil
}
