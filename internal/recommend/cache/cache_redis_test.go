package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Without a backend the cache must behave like an always-cold cache, never
// an error source.
func TestRedisCacheWithoutClient(t *testing.T) {
	ctx := context.Background()
	c := NewRedis(nil)

	var v int
	hit, err := c.Get(ctx, "k", &v)
	require.NoError(t, err)
	assert.False(t, hit)

	assert.NoError(t, c.Set(ctx, "k", 1, time.Minute))
	assert.NoError(t, c.InvalidateUser(ctx, uuid.New()))

	deleted, err := c.DeleteByPattern(ctx, "reco:user:*")
	require.NoError(t, err)
	assert.Zero(t, deleted)
}
