package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bokji/internal/program/models"
	"bokji/pkg/platform/sentinel"
)

func TestSeedNormalizesTags(t *testing.T) {
	catalog := NewMemory()
	id := uuid.New()

	catalog.Seed(&models.WelfareProgram{
		ID:       id,
		Name:     "Youth Housing Allowance",
		Category: "housing",
		IsActive: true,
		Tags:     []string{" 청년 ", "주거", "청년", "", "주거 "},
	})

	program, err := catalog.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, []string{"청년", "주거"}, program.Tags)
}

func TestFindAllActiveSkipsInactive(t *testing.T) {
	catalog := NewMemory()
	active := uuid.New()
	catalog.Seed(
		&models.WelfareProgram{ID: active, Name: "Job Seeker Stipend", Category: "employment", IsActive: true},
		&models.WelfareProgram{ID: uuid.New(), Name: "Closed Pilot", Category: "housing", IsActive: false},
	)

	programs, err := catalog.FindAllActive(context.Background())
	require.NoError(t, err)
	require.Len(t, programs, 1)
	assert.Equal(t, active, programs[0].ID)
}

func TestIncrementViewCountUnknownProgram(t *testing.T) {
	catalog := NewMemory()
	err := catalog.IncrementViewCount(context.Background(), uuid.New())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
