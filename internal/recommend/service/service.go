// Package service implements the recommendation query and refresh
// operations on top of the store, cache, catalog, and limiter ports.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"bokji/internal/history"
	"bokji/internal/matching"
	profileports "bokji/internal/profile/ports"
	programports "bokji/internal/program/ports"
	rlmodels "bokji/internal/ratelimit/models"
	"bokji/internal/recommend/cache"
	"bokji/internal/recommend/metrics"
	"bokji/internal/recommend/models"
	"bokji/internal/recommend/ports"
	dErrors "bokji/pkg/domain-errors"
	"bokji/pkg/platform/sentinel"
)

// Store and Cache are the recommendation persistence ports.
type (
	Store = ports.Store
	Cache = ports.Cache
)

// Limiter gates the refresh operation. A nil limiter allows every refresh.
type Limiter interface {
	CheckAndConsume(ctx context.Context, userID uuid.UUID, action rlmodels.Action,
		window time.Duration, maxRequests int) (rlmodels.Decision, error)
}

// HistoryRecorder accepts history entries without ever failing the caller.
type HistoryRecorder interface {
	Record(e history.Entry)
}

// TxRunner executes fn inside one storage transaction when the backing
// store supports it. The default runner calls fn directly.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// ThrottledError rejects a refresh still inside its cooldown window.
type ThrottledError struct {
	RemainingSeconds int
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("refresh throttled, retry in %d seconds", e.RemainingSeconds)
}

// Service orchestrates recommendation reads, refreshes, and interactions.
type Service struct {
	store    Store
	cache    Cache
	catalog  programports.Catalog
	profiles profileports.Source
	matcher  *matching.Orchestrator
	limiter  Limiter
	history  HistoryRecorder
	runTx    TxRunner

	cacheTTL      time.Duration
	refreshWindow time.Duration
	refreshMax    int

	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

func WithLimiter(l Limiter) Option {
	return func(s *Service) { s.limiter = l }
}

func WithHistory(h HistoryRecorder) Option {
	return func(s *Service) { s.history = h }
}

// WithTxRunner wraps the refresh write path (delete-all plus upserts) in a
// storage transaction so readers never observe a half-replaced set.
func WithTxRunner(run TxRunner) Option {
	return func(s *Service) { s.runTx = run }
}

func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) { s.cacheTTL = ttl }
}

// WithRefreshPolicy sets the cooldown window and the number of refreshes
// allowed per window.
func WithRefreshPolicy(window time.Duration, maxRequests int) Option {
	return func(s *Service) {
		s.refreshWindow = window
		s.refreshMax = maxRequests
	}
}

// WithOrchestrator overrides the matching orchestrator, usually to change
// the minimum score or scoring concurrency.
func WithOrchestrator(o *matching.Orchestrator) Option {
	return func(s *Service) {
		if o != nil {
			s.matcher = o
		}
	}
}

// New constructs a Service. Store, catalog, and profile source are
// required; everything else has a safe default.
func New(store Store, catalog programports.Catalog, profiles profileports.Source, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("recommendation store is required")
	}
	if catalog == nil {
		return nil, errors.New("program catalog is required")
	}
	if profiles == nil {
		return nil, errors.New("profile source is required")
	}
	s := &Service{
		store:         store,
		catalog:       catalog,
		profiles:      profiles,
		matcher:       matching.NewOrchestrator(),
		cacheTTL:      time.Hour,
		refreshWindow: 60 * time.Second,
		refreshMax:    1,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = cache.NewMemory()
	}
	return s, nil
}

// GetRecommendations returns one page of the user's recommendation list
// with category facet counts, served from cache when a fresh entry exists.
func (s *Service) GetRecommendations(ctx context.Context, userID uuid.UUID, q models.ListQuery) (*models.RecommendationList, error) {
	q.Normalize()
	key := cache.ListKey(userID, q)

	var cached models.RecommendationList
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		s.metrics.ObserveCacheHit(true)
		return &cached, nil
	}
	s.metrics.ObserveCacheHit(false)

	items, total, err := s.store.FindByUser(ctx, userID, q)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load recommendations")
	}
	if items == nil {
		items = []*models.ListItem{}
	}

	counts, err := s.store.CountByCategory(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load category counts")
	}

	list := &models.RecommendationList{
		Items:          items,
		TotalCount:     total,
		CategoryCounts: facets(counts),
		Page:           q.Page,
		Limit:          q.Limit,
		HasMore:        q.Offset()+len(items) < total,
	}

	if err := s.cache.Set(ctx, key, list, s.cacheTTL); err != nil {
		s.logger.WarnContext(ctx, "failed to cache recommendation list",
			"user_id", userID, "error", err.Error())
	}
	return list, nil
}

// RefreshRecommendations recomputes the user's full recommendation set:
// every active program is scored against the current profile and the stored
// set is replaced with the results. One refresh per cooldown window.
func (s *Service) RefreshRecommendations(ctx context.Context, userID uuid.UUID) (*models.RefreshResult, error) {
	if s.limiter != nil {
		decision, err := s.limiter.CheckAndConsume(ctx, userID, rlmodels.ActionRefresh, s.refreshWindow, s.refreshMax)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "refresh limiter check failed")
		}
		if !decision.Allowed {
			s.metrics.IncrementThrottled()
			return nil, &ThrottledError{RemainingSeconds: decision.RemainingSeconds}
		}
	}

	profile, err := s.profiles.GetForMatching(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user profile not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user profile")
	}

	programs, err := s.catalog.FindAllActive(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load program catalog")
	}

	start := time.Now()
	scored, err := s.matcher.RunForUser(ctx, profile, programs)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "matching failed")
	}

	err = s.inTx(ctx, func(ctx context.Context) error {
		if err := s.store.DeleteAllForUser(ctx, userID); err != nil {
			return err
		}
		for _, sp := range scored {
			rec := &models.Recommendation{
				UserID:     userID,
				ProgramID:  sp.Program.ID,
				MatchScore: sp.Result.Score,
				Reasons:    sp.Result.Reasons,
			}
			if err := s.store.Upsert(ctx, rec); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist recommendations")
	}

	for _, sp := range scored {
		s.recordHistory(history.Entry{
			UserID:     userID,
			ProgramID:  sp.Program.ID,
			MatchScore: sp.Result.Score,
			Action:     history.ActionGenerated,
		})
	}

	s.invalidate(ctx, userID)
	s.metrics.ObserveRefresh(time.Since(start), len(scored))
	s.logger.InfoContext(ctx, "recommendations refreshed",
		"user_id", userID, "programs_scored", len(programs), "kept", len(scored))

	return &models.RefreshResult{
		UpdatedCount: len(scored),
		Message:      fmt.Sprintf("%d recommendations updated", len(scored)),
	}, nil
}

// RecordView stamps the viewed time on a recommendation and bumps the
// program's popularity counter.
func (s *Service) RecordView(ctx context.Context, userID, recommendationID uuid.UUID) (*models.ViewResult, error) {
	rec, err := s.store.FindByID(ctx, recommendationID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "recommendation not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load recommendation")
	}
	// Ownership is part of identity here: another user's id is as good as
	// no id at all.
	if rec.UserID != userID {
		return nil, dErrors.New(dErrors.CodeNotFound, "recommendation not found")
	}

	now := time.Now().UTC()
	if err := s.store.MarkViewed(ctx, recommendationID, userID, now); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "recommendation not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record view")
	}

	if err := s.catalog.IncrementViewCount(ctx, rec.ProgramID); err != nil {
		s.logger.WarnContext(ctx, "failed to increment program view count",
			"program_id", rec.ProgramID, "error", err.Error())
	}

	s.recordHistory(history.Entry{
		UserID:     userID,
		ProgramID:  rec.ProgramID,
		MatchScore: rec.MatchScore,
		Action:     history.ActionViewed,
	})
	s.invalidate(ctx, userID)

	return &models.ViewResult{ViewedAt: now}, nil
}

// ToggleBookmark flips the bookmark on the user's recommendation for a
// program and returns the new state. Toggling a program the user has no
// recommendation for is a no-op returning false.
func (s *Service) ToggleBookmark(ctx context.Context, userID, programID uuid.UUID) (bool, error) {
	rec, err := s.store.ToggleBookmark(ctx, userID, programID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to toggle bookmark")
	}
	if rec == nil {
		return false, nil
	}

	// Only the off-to-on transition is a history event; unbookmarking is
	// not an interaction worth the trail.
	if rec.IsBookmarked {
		s.recordHistory(history.Entry{
			UserID:     userID,
			ProgramID:  programID,
			MatchScore: rec.MatchScore,
			Action:     history.ActionBookmarked,
		})
	}
	s.invalidate(ctx, userID)

	return rec.IsBookmarked, nil
}

func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.runTx == nil {
		return fn(ctx)
	}
	return s.runTx(ctx, fn)
}

func (s *Service) recordHistory(e history.Entry) {
	if s.history != nil {
		s.history.Record(e)
	}
}

func (s *Service) invalidate(ctx context.Context, userID uuid.UUID) {
	if err := s.cache.InvalidateUser(ctx, userID); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate recommendation cache",
			"user_id", userID, "error", err.Error())
	}
}

// facets turns the category count map into a deterministic slice, largest
// bucket first.
func facets(counts map[string]int) []models.CategoryCount {
	out := make([]models.CategoryCount, 0, len(counts))
	for category, n := range counts {
		out = append(out, models.CategoryCount{Category: category, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}
