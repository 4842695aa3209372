// Package models defines the welfare program catalog entities.
package models

import (
	"time"

	"github.com/google/uuid"

	"bokji/internal/domain"
	pstrings "bokji/pkg/platform/strings"
)

// DefaultBonusScore applies when a special condition declares no bonus.
const DefaultBonusScore = 5

// SpecialCondition is one entry of a program's conditional criteria.
// Required conditions gate eligibility; optional ones only add bonus score.
type SpecialCondition struct {
	Key           string                `json:"key"`
	RequiredValue domain.ConditionValue `json:"required_value"`
	Label         string                `json:"label"`
	IsRequired    bool                  `json:"is_required"`
	BonusScore    int                   `json:"bonus_score,omitempty"`
}

// Bonus returns the bonus score for a matched condition, defaulting when the
// program declared none.
func (c SpecialCondition) Bonus() int {
	if c.BonusScore <= 0 {
		return DefaultBonusScore
	}
	return c.BonusScore
}

// EligibilityCriteria describes who a program is for. Immutable once the
// program is published. Empty or nil collections mean "unconstrained".
type EligibilityCriteria struct {
	AgeMin            *int                   `json:"age_min,omitempty"`
	AgeMax            *int                   `json:"age_max,omitempty"`
	IncomeLevels      []int                  `json:"income_levels,omitempty"`
	Regions           []domain.Region        `json:"regions,omitempty"`
	HouseholdTypes    []domain.HouseholdType `json:"household_types,omitempty"`
	SpecialConditions []SpecialCondition     `json:"special_conditions,omitempty"`
}

// IncomeUnconstrained reports whether the income dimension places no
// restriction: either no levels are listed, or the IncomeAny sentinel is
// present (which overrides any other listed level).
func (c EligibilityCriteria) IncomeUnconstrained() bool {
	if len(c.IncomeLevels) == 0 {
		return true
	}
	for _, lvl := range c.IncomeLevels {
		if lvl == domain.IncomeAny {
			return true
		}
	}
	return false
}

// WelfareProgram is one benefit program offered to users.
type WelfareProgram struct {
	ID                 uuid.UUID
	Name               string
	Category           string
	Criteria           EligibilityCriteria
	IsActive           bool
	ViewCount          int64
	BookmarkCount      int64
	ApplicationEndDate *time.Time
	Tags               []string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NormalizeTags trims and dedupes the program's tag list in place.
func (p *WelfareProgram) NormalizeTags() {
	p.Tags = pstrings.DedupeAndTrim(p.Tags)
}
