package matching

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bokji/internal/domain"
	profile "bokji/internal/profile/models"
	program "bokji/internal/program/models"
)

func intPtr(v int) *int { return &v }

func baseProfile() *profile.UserProfileForMatching {
	return &profile.UserProfileForMatching{
		UserID:        uuid.New(),
		Age:           25,
		IncomeLevel:   3,
		Region:        domain.Region{Province: "seoul", District: "gangnam"},
		HouseholdType: domain.HouseholdSingle,
		HouseholdSize: 1,
		SpecialConditions: map[string]domain.ConditionValue{
			"has_disabled_member": domain.Bool(true),
			"employment_status":   domain.String("unemployed"),
		},
	}
}

func TestScore_EmptyCriteriaMatchesEveryone(t *testing.T) {
	result := Score(baseProfile(), program.EligibilityCriteria{})

	assert.True(t, result.Eligible)
	assert.Equal(t, 100, result.Score)
	assert.Empty(t, result.Matched, "unconstrained gates do not appear in matched conditions")

	// The only reason for an all-empty program is the nationwide one.
	require.Len(t, result.Reasons, 1)
	assert.Equal(t, ReasonRegion, result.Reasons[0].Type)
	assert.Equal(t, "offered nationwide", result.Reasons[0].Label)
}

func TestScore_AgeGate(t *testing.T) {
	tests := []struct {
		name     string
		age      int
		min, max *int
		eligible bool
		score    int
	}{
		{"inside range", 25, intPtr(19), intPtr(34), true, 100},
		{"above range", 40, intPtr(19), intPtr(34), false, 0},
		{"below range", 18, intPtr(19), intPtr(34), false, 0},
		{"min only honored", 70, intPtr(65), nil, true, 100},
		{"min only fails", 64, intPtr(65), nil, false, 0},
		{"max only honored", 10, nil, intPtr(18), true, 100},
		{"max only fails", 19, nil, intPtr(18), false, 0},
		{"boundary inclusive low", 19, intPtr(19), intPtr(34), true, 100},
		{"boundary inclusive high", 34, intPtr(19), intPtr(34), true, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := baseProfile()
			p.Age = tt.age
			result := Score(p, program.EligibilityCriteria{AgeMin: tt.min, AgeMax: tt.max})

			assert.Equal(t, tt.eligible, result.Eligible)
			assert.Equal(t, tt.score, result.Score)
			if !tt.eligible {
				assert.Empty(t, result.Reasons, "disqualified results carry no reasons")
				assert.Equal(t, []string{string(ReasonAge)}, result.Unmatched)
			}
		})
	}
}

func TestScore_FailedHardGateShortCircuits(t *testing.T) {
	// Income passes, household fails: the household gate must disqualify
	// regardless of the other dimensions.
	criteria := program.EligibilityCriteria{
		IncomeLevels:   []int{1, 2, 3},
		HouseholdTypes: []domain.HouseholdType{domain.HouseholdMultiChild},
	}

	result := Score(baseProfile(), criteria)

	assert.False(t, result.Eligible)
	assert.Equal(t, 0, result.Score)
	assert.Empty(t, result.Reasons)
	assert.Equal(t, []string{string(ReasonHousehold)}, result.Unmatched)
}

func TestScore_IncomeGate(t *testing.T) {
	t.Run("ALL sentinel unconstrains even alongside other levels", func(t *testing.T) {
		p := baseProfile()
		p.IncomeLevel = 8
		result := Score(p, program.EligibilityCriteria{
			IncomeLevels: []int{1, 2, domain.IncomeAny},
		})
		assert.True(t, result.Eligible)
		assert.Equal(t, 100, result.Score)
	})

	t.Run("membership required when constrained", func(t *testing.T) {
		p := baseProfile()
		p.IncomeLevel = 5
		result := Score(p, program.EligibilityCriteria{IncomeLevels: []int{1, 2, 3}})
		assert.False(t, result.Eligible)
		assert.Equal(t, 0, result.Score)
	})

	t.Run("undeclared bracket passes constraints", func(t *testing.T) {
		p := baseProfile()
		p.IncomeLevel = domain.IncomeAny
		result := Score(p, program.EligibilityCriteria{IncomeLevels: []int{1, 2}})
		assert.True(t, result.Eligible)
	})
}

func TestScore_RegionGate(t *testing.T) {
	tests := []struct {
		name     string
		regions  []domain.Region
		eligible bool
	}{
		{
			"exact province and district",
			[]domain.Region{{Province: "seoul", District: "gangnam"}},
			true,
		},
		{
			"district mismatch",
			[]domain.Region{{Province: "seoul", District: "mapo"}},
			false,
		},
		{
			"province-wide entry matches any district",
			[]domain.Region{{Province: "seoul"}},
			true,
		},
		{
			"OR across entries",
			[]domain.Region{{Province: "busan"}, {Province: "seoul", District: "gangnam"}},
			true,
		},
		{
			"no entry matches",
			[]domain.Region{{Province: "busan"}, {Province: "incheon"}},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Score(baseProfile(), program.EligibilityCriteria{Regions: tt.regions})
			assert.Equal(t, tt.eligible, result.Eligible)
		})
	}
}

func TestScore_SpecialConditions(t *testing.T) {
	t.Run("required condition failure disqualifies", func(t *testing.T) {
		criteria := program.EligibilityCriteria{
			SpecialConditions: []program.SpecialCondition{
				{Key: "is_veteran", RequiredValue: domain.Bool(true), IsRequired: true},
			},
		}
		result := Score(baseProfile(), criteria)

		assert.False(t, result.Eligible)
		assert.Equal(t, 0, result.Score)
		assert.Equal(t, []string{string(ReasonSpecial)}, result.Unmatched)
	})

	t.Run("required condition needs exact value equality", func(t *testing.T) {
		criteria := program.EligibilityCriteria{
			SpecialConditions: []program.SpecialCondition{
				// Profile holds the string "unemployed"; a boolean true must not match.
				{Key: "employment_status", RequiredValue: domain.Bool(true), IsRequired: true},
			},
		}
		result := Score(baseProfile(), criteria)
		assert.False(t, result.Eligible)
	})

	t.Run("matched required condition earns full special weight and bonus", func(t *testing.T) {
		criteria := program.EligibilityCriteria{
			SpecialConditions: []program.SpecialCondition{
				{Key: "has_disabled_member", RequiredValue: domain.Bool(true), Label: "disabled household member", IsRequired: true, BonusScore: 10},
			},
		}
		result := Score(baseProfile(), criteria)

		assert.True(t, result.Eligible)
		assert.Equal(t, 10, result.Bonus)
		// 100% of weight earned, clamped after bonus.
		assert.Equal(t, 100, result.Score)
		require.Len(t, result.Reasons, 2) // nationwide + special
		assert.Equal(t, ReasonSpecial, result.Reasons[1].Type)
		assert.Equal(t, "disabled household member", result.Reasons[1].Label)
	})

	t.Run("absent optional condition does not disqualify", func(t *testing.T) {
		criteria := program.EligibilityCriteria{
			SpecialConditions: []program.SpecialCondition{
				{Key: "is_veteran", RequiredValue: domain.Bool(true)},
			},
		}
		result := Score(baseProfile(), criteria)

		assert.True(t, result.Eligible)
		assert.Zero(t, result.Bonus)
		// Gates earn 85 of 100; the declared-but-unmatched condition earns
		// none of the special weight.
		assert.Equal(t, 85, result.Score)
	})

	t.Run("default bonus is five", func(t *testing.T) {
		criteria := program.EligibilityCriteria{
			SpecialConditions: []program.SpecialCondition{
				{Key: "has_disabled_member", RequiredValue: domain.Bool(true)},
			},
		}
		result := Score(baseProfile(), criteria)
		assert.Equal(t, 5, result.Bonus)
	})
}

func TestScore_MonotonicInMatchedBonusConditions(t *testing.T) {
	conds := []program.SpecialCondition{
		{Key: "has_disabled_member", RequiredValue: domain.Bool(true)},
		{Key: "employment_status", RequiredValue: domain.String("unemployed")},
		{Key: "is_veteran", RequiredValue: domain.Bool(true)},
	}

	prev := -1
	// Profile matches the first N conditions as N grows; score must never drop.
	for n := 1; n <= len(conds); n++ {
		criteria := program.EligibilityCriteria{SpecialConditions: conds[:n]}
		result := Score(baseProfile(), criteria)
		require.True(t, result.Eligible)
		assert.GreaterOrEqual(t, result.Score, prev, "score must be monotonic in matched conditions")
		prev = result.Score
	}
}

func TestScore_ScenarioAgeOnlyProgram(t *testing.T) {
	criteria := program.EligibilityCriteria{AgeMin: intPtr(19), AgeMax: intPtr(34)}

	p := baseProfile()
	p.Age = 25
	result := Score(p, criteria)
	assert.True(t, result.Eligible)
	assert.Equal(t, 100, result.Score)

	p.Age = 40
	result = Score(p, criteria)
	assert.False(t, result.Eligible)
	assert.Equal(t, 0, result.Score)
}
