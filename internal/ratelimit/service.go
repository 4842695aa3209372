// Package ratelimit gates expensive per-user operations behind cooldown
// windows.
package ratelimit

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"bokji/internal/ratelimit/models"
	"bokji/internal/ratelimit/ports"
)

// Type alias for the shared store interface.
type CooldownStore = ports.CooldownStore

// Service wraps a cooldown store with fail-open semantics: when the backing
// store is unreachable, requests are allowed. Feature availability beats
// strict throttling for this core.
type Service struct {
	store  CooldownStore
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New builds a limiter service.
func New(store CooldownStore, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("cooldown store is required")
	}
	svc := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// CheckAndConsume consumes one request slot for (action, user). A rejected
// decision carries the whole seconds remaining until the window expires,
// rounded up so callers never retry a second too early.
func (s *Service) CheckAndConsume(
	ctx context.Context,
	userID uuid.UUID,
	action models.Action,
	window time.Duration,
	maxRequests int,
) (models.Decision, error) {
	allowed, retryAfter, err := s.store.Acquire(ctx, models.Key(action, userID), window, maxRequests)
	if err != nil {
		s.logger.WarnContext(ctx, "cooldown store unavailable, failing open",
			"action", action, "user_id", userID, "error", err.Error())
		return models.Decision{Allowed: true}, nil
	}
	if allowed {
		return models.Decision{Allowed: true}, nil
	}
	return models.Decision{
		Allowed:          false,
		RemainingSeconds: int(math.Ceil(retryAfter.Seconds())),
	}, nil
}
