package domain

// HouseholdType classifies the composition of a user's household.
type HouseholdType string

const (
	HouseholdSingle        HouseholdType = "single"
	HouseholdMarriedCouple HouseholdType = "married_couple"
	HouseholdNuclearFamily HouseholdType = "nuclear_family"
	HouseholdSingleParent  HouseholdType = "single_parent"
	HouseholdMultiChild    HouseholdType = "multi_child"
	HouseholdExtended      HouseholdType = "extended"
	HouseholdOther         HouseholdType = "other"
)

// Income levels are ordinals 1-8 (median-income deciles collapsed into
// brackets). IncomeAny is the sentinel meaning "no bracket declared" on a
// profile and "no restriction" inside a criteria set.
const (
	IncomeAny      = 0
	IncomeLevelMin = 1
	IncomeLevelMax = 8
)
