package recommendation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"bokji/internal/matching"
	programmodels "bokji/internal/program/models"
	programports "bokji/internal/program/ports"
	"bokji/internal/recommend/models"
	"bokji/pkg/platform/sentinel"
)

// MemoryStore is the in-memory recommendation store used by unit tests and
// local development. List reads join against the program catalog the same
// way the Postgres store joins welfare_programs.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*models.Recommendation
	byUser  map[uuid.UUID]map[uuid.UUID]*models.Recommendation // userID -> programID -> rec
	catalog programports.Catalog
}

// NewMemory creates an empty in-memory store joining against the given catalog.
func NewMemory(catalog programports.Catalog) *MemoryStore {
	return &MemoryStore{
		byID:    make(map[uuid.UUID]*models.Recommendation),
		byUser:  make(map[uuid.UUID]map[uuid.UUID]*models.Recommendation),
		catalog: catalog,
	}
}

func (s *MemoryStore) Upsert(_ context.Context, rec *models.Recommendation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	userRecs := s.byUser[rec.UserID]
	if userRecs == nil {
		userRecs = make(map[uuid.UUID]*models.Recommendation)
		s.byUser[rec.UserID] = userRecs
	}

	if existing, ok := userRecs[rec.ProgramID]; ok {
		existing.MatchScore = rec.MatchScore
		existing.Reasons = append([]matching.MatchReason(nil), rec.Reasons...)
		existing.UpdatedAt = now
		return nil
	}

	cp := *rec
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	cp.IsBookmarked = false
	cp.ViewedAt = nil
	cp.CreatedAt = now
	cp.UpdatedAt = now
	cp.Reasons = append([]matching.MatchReason(nil), rec.Reasons...)
	userRecs[cp.ProgramID] = &cp
	s.byID[cp.ID] = &cp
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.Recommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

type joinedRec struct {
	rec     *models.Recommendation
	program *programmodels.WelfareProgram
}

func (s *MemoryStore) FindByUser(ctx context.Context, userID uuid.UUID, q models.ListQuery) ([]*models.ListItem, int, error) {
	joined, err := s.joinedForUser(ctx, userID, q.Category)
	if err != nil {
		return nil, 0, err
	}

	sortJoined(joined, q.SortBy)

	total := len(joined)
	start := q.Offset()
	if start > total {
		start = total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}

	items := make([]*models.ListItem, 0, end-start)
	for _, j := range joined[start:end] {
		reasons := j.rec.Reasons
		if reasons == nil {
			reasons = []matching.MatchReason{}
		}
		items = append(items, &models.ListItem{
			ID:                 j.rec.ID,
			ProgramID:          j.program.ID,
			ProgramName:        j.program.Name,
			Category:           j.program.Category,
			Tags:               j.program.Tags,
			MatchScore:         j.rec.MatchScore,
			Reasons:            reasons,
			IsBookmarked:       j.rec.IsBookmarked,
			ViewedAt:           j.rec.ViewedAt,
			ApplicationEndDate: j.program.ApplicationEndDate,
			ProgramViewCount:   j.program.ViewCount,
			UpdatedAt:          j.rec.UpdatedAt,
		})
	}
	return items, total, nil
}

func (s *MemoryStore) joinedForUser(ctx context.Context, userID uuid.UUID, category string) ([]joinedRec, error) {
	s.mu.RLock()
	recs := make([]*models.Recommendation, 0, len(s.byUser[userID]))
	for _, rec := range s.byUser[userID] {
		cp := *rec
		recs = append(recs, &cp)
	}
	s.mu.RUnlock()

	var joined []joinedRec
	for _, rec := range recs {
		p, err := s.catalog.FindByID(ctx, rec.ProgramID)
		if err != nil {
			continue // program withdrawn from catalog
		}
		if !p.IsActive {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		joined = append(joined, joinedRec{rec: rec, program: p})
	}
	return joined, nil
}

func sortJoined(joined []joinedRec, sortBy models.SortBy) {
	var less func(i, j int) bool
	switch sortBy {
	case models.SortByLatest:
		less = func(i, j int) bool {
			return joined[i].program.CreatedAt.After(joined[j].program.CreatedAt)
		}
	case models.SortByDeadline:
		less = func(i, j int) bool {
			di, dj := joined[i].program.ApplicationEndDate, joined[j].program.ApplicationEndDate
			switch {
			case di == nil:
				return false // open-ended sorts last
			case dj == nil:
				return true
			default:
				return di.Before(*dj)
			}
		}
	case models.SortByPopularity:
		less = func(i, j int) bool {
			return joined[i].program.ViewCount > joined[j].program.ViewCount
		}
	default:
		less = func(i, j int) bool {
			if joined[i].rec.MatchScore != joined[j].rec.MatchScore {
				return joined[i].rec.MatchScore > joined[j].rec.MatchScore
			}
			return joined[i].program.CreatedAt.Before(joined[j].program.CreatedAt)
		}
	}
	sort.SliceStable(joined, less)
}

func (s *MemoryStore) DeleteAllForUser(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.byUser[userID] {
		delete(s.byID, rec.ID)
	}
	delete(s.byUser, userID)
	return nil
}

func (s *MemoryStore) ToggleBookmark(_ context.Context, userID, programID uuid.UUID) (*models.Recommendation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byUser[userID][programID]
	if !ok {
		return nil, nil
	}
	rec.IsBookmarked = !rec.IsBookmarked
	rec.UpdatedAt = time.Now().UTC()
	cp := *rec
	return &cp, nil
}

func (s *MemoryStore) MarkViewed(_ context.Context, id, userID uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok || rec.UserID != userID {
		return sentinel.ErrNotFound
	}
	t := at
	rec.ViewedAt = &t
	rec.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) CountByCategory(ctx context.Context, userID uuid.UUID) (map[string]int, error) {
	joined, err := s.joinedForUser(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, j := range joined {
		counts[j.program.Category]++
	}
	return counts, nil
}
