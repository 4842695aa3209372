package ratelimit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bokji/internal/ratelimit/models"
	"bokji/internal/ratelimit/store/cooldown"
)

type failingStore struct{ err error }

func (f *failingStore) Acquire(context.Context, string, time.Duration, int) (bool, time.Duration, error) {
	return false, 0, f.err
}

func newService(t *testing.T, store CooldownStore) *Service {
	t.Helper()
	svc, err := New(store, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	return svc
}

func TestNewRequiresStore(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cooldown store is required")
}

func TestCheckAndConsumeCooldown(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now()

	store := cooldown.NewMemory()
	store.SetClock(func() time.Time { return now })
	svc := newService(t, store)

	first, err := svc.CheckAndConsume(ctx, userID, models.ActionRefresh, time.Minute, 1)
	require.NoError(t, err)
	assert.True(t, first.Allowed)

	// Second call five seconds into a sixty second window.
	now = now.Add(5 * time.Second)
	second, err := svc.CheckAndConsume(ctx, userID, models.ActionRefresh, time.Minute, 1)
	require.NoError(t, err)
	assert.False(t, second.Allowed)
	assert.Equal(t, 55, second.RemainingSeconds)

	// Other users and other actions are unaffected.
	other, err := svc.CheckAndConsume(ctx, uuid.New(), models.ActionRefresh, time.Minute, 1)
	require.NoError(t, err)
	assert.True(t, other.Allowed)

	now = now.Add(time.Minute)
	third, err := svc.CheckAndConsume(ctx, userID, models.ActionRefresh, time.Minute, 1)
	require.NoError(t, err)
	assert.True(t, third.Allowed)
}

func TestCheckAndConsumeRoundsRemainingUp(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	store := cooldown.NewMemory()
	store.SetClock(func() time.Time { return now })
	svc := newService(t, store)

	userID := uuid.New()
	_, err := svc.CheckAndConsume(ctx, userID, models.ActionRefresh, time.Minute, 1)
	require.NoError(t, err)

	now = now.Add(4*time.Second + 300*time.Millisecond)
	decision, err := svc.CheckAndConsume(ctx, userID, models.ActionRefresh, time.Minute, 1)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	// 55.7s remaining reports as 56 so callers never retry early.
	assert.Equal(t, 56, decision.RemainingSeconds)
}

func TestCheckAndConsumeFailsOpen(t *testing.T) {
	svc := newService(t, &failingStore{err: errors.New("backend down")})

	decision, err := svc.CheckAndConsume(context.Background(), uuid.New(), models.ActionRefresh, time.Minute, 1)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Zero(t, decision.RemainingSeconds)
}
