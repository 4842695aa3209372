package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"bokji/internal/domain"
	"bokji/internal/profile/models"
	"bokji/pkg/platform/sentinel"
)

// Postgres reads the matching projection of user profiles. Sensitive profile
// fields live in encrypted columns owned by the profile service; this store
// only touches the plain matching columns.
type Postgres struct {
	db *sql.DB
}

// NewPostgres creates a Postgres-backed profile source.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) GetForMatching(ctx context.Context, userID uuid.UUID) (*models.UserProfileForMatching, error) {
	query := `
		SELECT user_id, age, income_level, province, district,
		       household_type, household_size, special_conditions
		FROM user_profiles
		WHERE user_id = $1`

	var (
		p             models.UserProfileForMatching
		conditionsRaw []byte
		household     string
	)
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID, &p.Age, &p.IncomeLevel,
		&p.Region.Province, &p.Region.District,
		&household, &p.HouseholdSize, &conditionsRaw,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query profile for matching: %w", err)
	}

	p.HouseholdType = domain.HouseholdType(household)
	if len(conditionsRaw) > 0 {
		if err := json.Unmarshal(conditionsRaw, &p.SpecialConditions); err != nil {
			return nil, fmt.Errorf("decode special conditions for user %s: %w", userID, err)
		}
	}
	return &p, nil
}
