package matching

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"bokji/internal/profile/models"
	program "bokji/internal/program/models"
)

// Orchestrator scores a profile against a program set and produces the
// filtered, ordered results the store persists. Scoring and sorting are
// separate steps so each stays independently testable.
type Orchestrator struct {
	minScore  int
	batchSize int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMinScore overrides the minimum score kept in results (default 50).
func WithMinScore(score int) Option {
	return func(o *Orchestrator) { o.minScore = score }
}

// WithBatchSize bounds how many programs are scored concurrently
// (default 8). Scoring is CPU-only, but refreshes over large catalogs must
// not fan out unbounded.
func WithBatchSize(n int) Option {
	return func(o *Orchestrator) { o.batchSize = n }
}

// NewOrchestrator builds an Orchestrator with default thresholds.
func NewOrchestrator(opts ...Option) *Orchestrator {
	o := &Orchestrator{minScore: MinMatchScore, batchSize: 8}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RunForUser scores every given program, keeps eligible results at or above
// the minimum score, and orders them by score descending. Inactive programs
// are skipped. Deterministic for identical inputs.
func (o *Orchestrator) RunForUser(
	ctx context.Context,
	profile *models.UserProfileForMatching,
	programs []*program.WelfareProgram,
) ([]ScoredProgram, error) {
	scored, err := o.ScoreAll(ctx, profile, programs)
	if err != nil {
		return nil, err
	}

	kept := scored[:0]
	for _, s := range scored {
		if s.Result.Eligible && s.Result.Score >= o.minScore {
			kept = append(kept, s)
		}
	}

	return SortByScoreDesc(kept), nil
}

// ScoreAll scores every active program in input order with bounded
// concurrency. The returned slice preserves catalog order regardless of
// which goroutine finished first.
func (o *Orchestrator) ScoreAll(
	ctx context.Context,
	profile *models.UserProfileForMatching,
	programs []*program.WelfareProgram,
) ([]ScoredProgram, error) {
	active := make([]*program.WelfareProgram, 0, len(programs))
	for _, p := range programs {
		if p.IsActive {
			active = append(active, p)
		}
	}

	results := make([]ScoredProgram, len(active))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.batchSize)
	for i, p := range active {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = ScoredProgram{Program: p, Result: Score(profile, p.Criteria)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// SortByScoreDesc orders results by score descending. The sort is stable:
// ties keep input order, which is catalog creation order.
func SortByScoreDesc(results []ScoredProgram) []ScoredProgram {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Result.Score > results[j].Result.Score
	})
	return results
}
