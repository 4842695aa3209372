package matching

import (
	"fmt"
	"math"
	"slices"

	"bokji/internal/domain"
	"bokji/internal/profile/models"
	program "bokji/internal/program/models"
)

// Score evaluates one profile against one program's criteria.
//
// The four hard gates (age, income, region, household) are checked in fixed
// order; any constrained gate the profile fails disqualifies the program
// outright. Required special conditions gate the same way. Optional special
// conditions only add bonus score. The final score is the earned share of
// the total weight scaled to 100, plus the bonus, clamped to 100.
func Score(profile *models.UserProfileForMatching, criteria program.EligibilityCriteria) MatchResult {
	var (
		earned  float64
		matched []string
		reasons []MatchReason
	)

	// Age gate.
	switch {
	case criteria.AgeMin == nil && criteria.AgeMax == nil:
		earned += WeightAge
	case ageWithin(profile.Age, criteria.AgeMin, criteria.AgeMax):
		earned += WeightAge
		matched = append(matched, string(ReasonAge))
		reasons = append(reasons, MatchReason{
			Type:   ReasonAge,
			Label:  ageLabel(criteria.AgeMin, criteria.AgeMax),
			Weight: WeightAge,
		})
	default:
		return failed(ReasonAge)
	}

	// Income gate.
	switch {
	case criteria.IncomeUnconstrained():
		earned += WeightIncome
	case incomeAllowed(profile.IncomeLevel, criteria.IncomeLevels):
		earned += WeightIncome
		matched = append(matched, string(ReasonIncome))
		reasons = append(reasons, MatchReason{
			Type:   ReasonIncome,
			Label:  fmt.Sprintf("income bracket %d eligible", profile.IncomeLevel),
			Weight: WeightIncome,
		})
	default:
		return failed(ReasonIncome)
	}

	// Region gate. Unlike the other gates, an unconstrained region is a
	// meaningful fact ("offered nationwide") and gets its own reason.
	switch {
	case len(criteria.Regions) == 0:
		earned += WeightRegion
		reasons = append(reasons, MatchReason{
			Type:   ReasonRegion,
			Label:  "offered nationwide",
			Weight: WeightRegion,
		})
	case regionAllowed(profile, criteria):
		earned += WeightRegion
		matched = append(matched, string(ReasonRegion))
		reasons = append(reasons, MatchReason{
			Type:   ReasonRegion,
			Label:  fmt.Sprintf("available in %s", profile.Region.Province),
			Weight: WeightRegion,
		})
	default:
		return failed(ReasonRegion)
	}

	// Household gate.
	switch {
	case len(criteria.HouseholdTypes) == 0:
		earned += WeightHousehold
	case slices.Contains(criteria.HouseholdTypes, profile.HouseholdType):
		earned += WeightHousehold
		matched = append(matched, string(ReasonHousehold))
		reasons = append(reasons, MatchReason{
			Type:   ReasonHousehold,
			Label:  fmt.Sprintf("household type %s eligible", profile.HouseholdType),
			Weight: WeightHousehold,
		})
	default:
		return failed(ReasonHousehold)
	}

	// Special conditions. Required failures disqualify like a hard gate;
	// the base weight is earned proportionally to matched conditions, and
	// each match contributes its bonus on top.
	var (
		bonus        int
		matchedConds int
	)
	for _, cond := range criteria.SpecialConditions {
		value, present := profile.SpecialConditions[cond.Key]
		ok := present && value.Equal(cond.RequiredValue)
		if !ok {
			if cond.IsRequired {
				return failed(ReasonSpecial)
			}
			continue
		}
		matchedConds++
		bonus += cond.Bonus()
		matched = append(matched, cond.Key)
		label := cond.Label
		if label == "" {
			label = cond.Key
		}
		reasons = append(reasons, MatchReason{
			Type:   ReasonSpecial,
			Label:  label,
			Weight: cond.Bonus(),
		})
	}
	if n := len(criteria.SpecialConditions); n == 0 {
		earned += WeightSpecial
	} else {
		earned += WeightSpecial * float64(matchedConds) / float64(n)
	}

	score := int(math.Round(earned/totalWeight*100)) + bonus
	if score > 100 {
		score = 100
	}

	return MatchResult{
		Eligible: true,
		Score:    score,
		Matched:  matched,
		Bonus:    bonus,
		Reasons:  reasons,
	}
}

func failed(dim ReasonType) MatchResult {
	return MatchResult{Unmatched: []string{string(dim)}}
}

func ageWithin(age int, min, max *int) bool {
	if min != nil && age < *min {
		return false
	}
	if max != nil && age > *max {
		return false
	}
	return true
}

func incomeAllowed(level int, allowed []int) bool {
	// An undeclared bracket passes every income constraint; the profile
	// owner chose not to disclose, and programs cannot verify here.
	if level == domain.IncomeAny {
		return true
	}
	return slices.Contains(allowed, level)
}

func regionAllowed(profile *models.UserProfileForMatching, criteria program.EligibilityCriteria) bool {
	for _, r := range criteria.Regions {
		if r.Covers(profile.Region) {
			return true
		}
	}
	return false
}

func ageLabel(min, max *int) string {
	switch {
	case min != nil && max != nil:
		return fmt.Sprintf("age within %d-%d", *min, *max)
	case min != nil:
		return fmt.Sprintf("age %d or older", *min)
	default:
		return fmt.Sprintf("age %d or younger", *max)
	}
}
