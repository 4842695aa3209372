// Package matching implements the eligibility scoring engine. Everything in
// this package is pure: no I/O, no clock, no shared state.
package matching

import "bokji/internal/program/models"

// Dimension weights. The four hard gates sum to 85; the special-condition
// base weight brings the total to 100.
const (
	WeightAge       = 25
	WeightIncome    = 25
	WeightRegion    = 20
	WeightHousehold = 15
	WeightSpecial   = 15

	totalWeight = WeightAge + WeightIncome + WeightRegion + WeightHousehold + WeightSpecial
)

// MinMatchScore is the default orchestrator threshold below which an
// eligible result is still dropped from recommendations.
const MinMatchScore = 50

// ReasonType classifies a match reason by the dimension that produced it.
type ReasonType string

const (
	ReasonAge       ReasonType = "age"
	ReasonIncome    ReasonType = "income"
	ReasonRegion    ReasonType = "region"
	ReasonHousehold ReasonType = "household"
	ReasonSpecial   ReasonType = "special"
)

// MatchReason is one human-readable explanation of why a program matched.
type MatchReason struct {
	Type   ReasonType `json:"type"`
	Label  string     `json:"label"`
	Weight int        `json:"weight"`
}

// MatchResult is the outcome of scoring one profile against one program's
// criteria. A failed hard gate or failed required condition yields
// Eligible=false, Score=0, and no reasons.
type MatchResult struct {
	Eligible  bool
	Score     int
	Matched   []string
	Unmatched []string
	Bonus     int
	Reasons   []MatchReason
}

// ScoredProgram pairs a program with its match result, preserving catalog
// order so ties stay deterministic after sorting.
type ScoredProgram struct {
	Program *models.WelfareProgram
	Result  MatchResult
}
