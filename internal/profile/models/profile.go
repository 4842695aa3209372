// Package models defines the read-only matching view of a user profile.
// Profile CRUD and field encryption are owned by the profile service; the
// recommendation core only ever reads this projection.
package models

import (
	"github.com/google/uuid"

	"bokji/internal/domain"
)

// UserProfileForMatching is the slice of a profile the matcher consumes.
type UserProfileForMatching struct {
	UserID            uuid.UUID
	Age               int
	IncomeLevel       int // 1-8, domain.IncomeAny when undeclared
	Region            domain.Region
	HouseholdType     domain.HouseholdType
	HouseholdSize     int
	SpecialConditions map[string]domain.ConditionValue
}
