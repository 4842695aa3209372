// Package models defines recommendation records and list DTOs.
package models

import (
	"time"

	"github.com/google/uuid"

	"bokji/internal/matching"
)

// Recommendation is one durable match between a user and a program.
// At most one row exists per (UserID, ProgramID); writes are upserts.
type Recommendation struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	ProgramID    uuid.UUID
	MatchScore   int
	Reasons      []matching.MatchReason
	IsBookmarked bool
	ViewedAt     *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SortBy selects the ordering of a recommendation list.
type SortBy string

const (
	SortByMatchScore SortBy = "match_score" // descending, the default
	SortByLatest     SortBy = "latest"      // program creation time, newest first
	SortByDeadline   SortBy = "deadline"    // application end date ascending, open-ended last
	SortByPopularity SortBy = "popularity"  // program view count, descending
)

// DefaultLimit and MaxLimit bound page sizes.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ListQuery captures the filter/sort/pagination shape of a list request.
// Each distinct normalized shape addresses its own cache entry.
type ListQuery struct {
	Category string
	SortBy   SortBy
	Page     int
	Limit    int
}

// Normalize applies defaults and bounds in place so equivalent requests
// produce identical cache keys.
func (q *ListQuery) Normalize() {
	switch q.SortBy {
	case SortByMatchScore, SortByLatest, SortByDeadline, SortByPopularity:
	default:
		q.SortBy = SortByMatchScore
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
}

// Offset returns the row offset for 1-indexed pages.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// ListItem is one row of a recommendation list response, joined with the
// program display fields the list sorts and renders by.
type ListItem struct {
	ID                 uuid.UUID             `json:"id"`
	ProgramID          uuid.UUID             `json:"program_id"`
	ProgramName        string                `json:"program_name"`
	Category           string                `json:"category"`
	Tags               []string              `json:"tags,omitempty"`
	MatchScore         int                   `json:"match_score"`
	Reasons            []matching.MatchReason `json:"match_reasons"`
	IsBookmarked       bool                  `json:"is_bookmarked"`
	ViewedAt           *time.Time            `json:"viewed_at,omitempty"`
	ApplicationEndDate *time.Time            `json:"application_end_date,omitempty"`
	ProgramViewCount   int64                 `json:"program_view_count"`
	UpdatedAt          time.Time             `json:"updated_at"`
}

// CategoryCount is one facet bucket of the list response.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// RecommendationList is the paginated list DTO, also the unit of caching.
type RecommendationList struct {
	Items          []*ListItem     `json:"items"`
	TotalCount     int             `json:"total_count"`
	CategoryCounts []CategoryCount `json:"category_counts"`
	Page           int             `json:"page"`
	Limit          int             `json:"limit"`
	HasMore        bool            `json:"has_more"`
}

// RefreshResult reports the outcome of a recompute.
type RefreshResult struct {
	UpdatedCount int    `json:"updated_count"`
	Message      string `json:"message"`
}

// ViewResult reports a recorded view.
type ViewResult struct {
	ViewedAt time.Time `json:"viewed_at"`
}
