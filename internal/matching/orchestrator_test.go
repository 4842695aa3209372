package matching

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bokji/internal/domain"
	program "bokji/internal/program/models"
)

func newProgram(name string, criteria program.EligibilityCriteria) *program.WelfareProgram {
	return &program.WelfareProgram{
		ID:       uuid.New(),
		Name:     name,
		Category: "employment",
		Criteria: criteria,
		IsActive: true,
	}
}

func TestOrchestrator_RunForUser(t *testing.T) {
	ctx := context.Background()
	orch := NewOrchestrator()
	profile := baseProfile()

	open := newProgram("open-to-all", program.EligibilityCriteria{})
	ageGated := newProgram("youth-only", program.EligibilityCriteria{
		AgeMin: intPtr(19), AgeMax: intPtr(34),
	})
	disqualified := newProgram("multi-child-only", program.EligibilityCriteria{
		HouseholdTypes: []domain.HouseholdType{domain.HouseholdMultiChild},
	})
	inactive := newProgram("retired", program.EligibilityCriteria{})
	inactive.IsActive = false

	results, err := orch.RunForUser(ctx, profile, []*program.WelfareProgram{
		disqualified, open, inactive, ageGated,
	})
	require.NoError(t, err)

	require.Len(t, results, 2)
	names := []string{results[0].Program.Name, results[1].Program.Name}
	assert.ElementsMatch(t, []string{"open-to-all", "youth-only"}, names)
	for _, r := range results {
		assert.True(t, r.Result.Eligible)
		assert.Equal(t, 100, r.Result.Score)
	}
}

func TestOrchestrator_MinScoreFilter(t *testing.T) {
	ctx := context.Background()
	profile := baseProfile()

	// One optional condition the profile does not hold: eligible at 85.
	partial := newProgram("partial", program.EligibilityCriteria{
		SpecialConditions: []program.SpecialCondition{
			{Key: "is_veteran", RequiredValue: domain.Bool(true)},
		},
	})

	results, err := NewOrchestrator(WithMinScore(90)).
		RunForUser(ctx, profile, []*program.WelfareProgram{partial})
	require.NoError(t, err)
	assert.Empty(t, results, "eligible results below the threshold are dropped")

	results, err = NewOrchestrator(WithMinScore(50)).
		RunForUser(ctx, profile, []*program.WelfareProgram{partial})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestOrchestrator_SortStableOnTies(t *testing.T) {
	ctx := context.Background()
	profile := baseProfile()

	// All three score 100; order must stay catalog (input) order.
	a := newProgram("a", program.EligibilityCriteria{})
	b := newProgram("b", program.EligibilityCriteria{})
	c := newProgram("c", program.EligibilityCriteria{})
	// This one scores 85 and must sort last.
	low := newProgram("low", program.EligibilityCriteria{
		SpecialConditions: []program.SpecialCondition{
			{Key: "is_veteran", RequiredValue: domain.Bool(true)},
		},
	})

	results, err := NewOrchestrator().
		RunForUser(ctx, profile, []*program.WelfareProgram{a, low, b, c})
	require.NoError(t, err)

	require.Len(t, results, 4)
	assert.Equal(t, "a", results[0].Program.Name)
	assert.Equal(t, "b", results[1].Program.Name)
	assert.Equal(t, "c", results[2].Program.Name)
	assert.Equal(t, "low", results[3].Program.Name)
}

func TestOrchestrator_Idempotent(t *testing.T) {
	ctx := context.Background()
	profile := baseProfile()

	programs := []*program.WelfareProgram{
		newProgram("a", program.EligibilityCriteria{}),
		newProgram("b", program.EligibilityCriteria{AgeMin: intPtr(19)}),
		newProgram("c", program.EligibilityCriteria{
			IncomeLevels: []int{1, 2, 3},
			SpecialConditions: []program.SpecialCondition{
				{Key: "has_disabled_member", RequiredValue: domain.Bool(true), BonusScore: 7},
			},
		}),
	}

	orch := NewOrchestrator(WithBatchSize(2))
	first, err := orch.RunForUser(ctx, profile, programs)
	require.NoError(t, err)
	second, err := orch.RunForUser(ctx, profile, programs)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Program.ID, second[i].Program.ID)
		assert.Equal(t, first[i].Result.Score, second[i].Result.Score)
		assert.Equal(t, first[i].Result.Reasons, second[i].Result.Reasons)
	}
}

func TestOrchestrator_ScoreAllPreservesInputOrder(t *testing.T) {
	ctx := context.Background()
	profile := baseProfile()

	var programs []*program.WelfareProgram
	for i := 0; i < 50; i++ {
		p := newProgram("p", program.EligibilityCriteria{})
		p.CreatedAt = time.Now()
		programs = append(programs, p)
	}

	scored, err := NewOrchestrator(WithBatchSize(4)).ScoreAll(ctx, profile, programs)
	require.NoError(t, err)

	require.Len(t, scored, 50)
	for i := range scored {
		assert.Equal(t, programs[i].ID, scored[i].Program.ID,
			"bounded concurrency must not reorder results")
	}
}

func TestOrchestrator_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewOrchestrator().RunForUser(ctx, baseProfile(), []*program.WelfareProgram{
		newProgram("a", program.EligibilityCriteria{}),
	})
	assert.ErrorIs(t, err, context.Canceled)
}
