// Package cache implements the recommendation list response cache.
package cache

import (
	"fmt"

	"github.com/google/uuid"

	"bokji/internal/recommend/models"
)

const keyPrefix = "reco:user:"

// UserPrefix returns the key prefix under which every cached list for the
// user lives. Invalidation deletes this whole prefix.
func UserPrefix(userID uuid.UUID) string {
	return keyPrefix + userID.String() + ":"
}

// ListKey derives the cache key for a normalized list query. Every distinct
// query shape gets its own entry.
func ListKey(userID uuid.UUID, q models.ListQuery) string {
	category := q.Category
	if category == "" {
		category = "all"
	}
	return fmt.Sprintf("%scat:%s:sort:%s:page:%d:limit:%d",
		UserPrefix(userID), category, q.SortBy, q.Page, q.Limit)
}
