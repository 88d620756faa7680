package repository

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"ideaforge-workers/internal/models"
)

// MemoryRepository is the demo-mode idea store. Ideas are copied in and out so
// callers never share state with the store.
type MemoryRepository struct {
	mu    sync.RWMutex
	ideas map[string]*models.Idea
	order []string
}

// NewMemoryRepository returns an empty store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{ideas: make(map[string]*models.Idea)}
}

// Get returns a copy of the idea or ErrNotFound.
func (r *MemoryRepository) Get(_ context.Context, id string) (*models.Idea, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idea, ok := r.ideas[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return clone(idea), nil
}

// Add inserts idea ahead of existing ones so unsorted listings are newest first.
func (r *MemoryRepository) Add(_ context.Context, idea *models.Idea) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.ideas[idea.ID]; exists {
		return fmt.Errorf("idea %s already exists", idea.ID)
	}
	r.ideas[idea.ID] = clone(idea)
	r.order = append([]string{idea.ID}, r.order...)
	return nil
}

// Update replaces the stored idea with a copy of idea.
func (r *MemoryRepository) Update(_ context.Context, idea *models.Idea) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ideas[idea.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, idea.ID)
	}
	r.ideas[idea.ID] = clone(idea)
	return nil
}

// AppendInterest checks for a duplicate and appends under the write lock.
func (r *MemoryRepository) AppendInterest(_ context.Context, id string, interest models.Interest, updatedAt string) (*models.Idea, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idea, ok := r.ideas[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if idea.HasInterestFrom(interest.InvestorID) {
		return nil, ErrDuplicateInterest
	}
	idea.Interests = append(idea.Interests, interest)
	idea.UpdatedAt = updatedAt
	return clone(idea), nil
}

// RecordScore sets the score and appends to the history under the write lock.
func (r *MemoryRepository) RecordScore(_ context.Context, id string, entry models.ScoreEntry) (*models.Idea, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idea, ok := r.ideas[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	score := entry.Score
	idea.AIScore = &score
	idea.ScoreHistory = append(idea.ScoreHistory, entry)
	idea.UpdatedAt = entry.At
	return clone(idea), nil
}

// Remove deletes the idea or returns ErrNotFound.
func (r *MemoryRepository) Remove(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ideas[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(r.ideas, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// List filters, sorts and limits a snapshot of the store.
func (r *MemoryRepository) List(_ context.Context, filter ListFilter) ([]models.Idea, error) {
	r.mu.RLock()
	out := make([]models.Idea, 0, len(r.order))
	for _, id := range r.order {
		idea := r.ideas[id]
		if matches(idea, filter) {
			out = append(out, *clone(idea))
		}
	}
	r.mu.RUnlock()

	sortIdeas(out, filter.Sort)
	if limit := filter.EffectiveLimit(); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func matches(idea *models.Idea, f ListFilter) bool {
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, idea.Status) {
		return false
	}
	if f.Visibility != "" && idea.Visibility != f.Visibility {
		return false
	}
	if f.EntrepreneurID != "" && idea.Entrepreneur.ID != f.EntrepreneurID {
		return false
	}
	if f.Category != "" && idea.Category != f.Category {
		return false
	}
	if f.Stage != "" && idea.Stage != f.Stage {
		return false
	}
	if f.MinScore > 0 && (idea.AIScore == nil || *idea.AIScore < f.MinScore) {
		return false
	}
	if f.FeaturedOnly && !idea.Featured {
		return false
	}
	if f.ExcludeID != "" && idea.ID == f.ExcludeID {
		return false
	}
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(idea.Title), term) &&
			!strings.Contains(strings.ToLower(idea.Tagline), term) &&
			!strings.Contains(strings.ToLower(idea.ProblemStatement), term) {
			return false
		}
	}
	return true
}

func sortIdeas(ideas []models.Idea, order string) {
	var less func(a, b models.Idea) bool
	switch order {
	case SortRecent:
		less = func(a, b models.Idea) bool { return a.CreatedAt > b.CreatedAt }
	case SortViews:
		less = func(a, b models.Idea) bool { return a.Views > b.Views }
	case SortInterests:
		less = func(a, b models.Idea) bool { return len(a.Interests) > len(b.Interests) }
	default:
		less = func(a, b models.Idea) bool { return scoreOf(a) > scoreOf(b) }
	}
	sort.SliceStable(ideas, func(i, j int) bool { return less(ideas[i], ideas[j]) })
}

// scoreOf ranks unscored ideas last.
func scoreOf(idea models.Idea) int {
	if idea.AIScore == nil {
		return -1
	}
	return *idea.AIScore
}

func clone(idea *models.Idea) *models.Idea {
	c := *idea
	if idea.AIScore != nil {
		score := *idea.AIScore
		c.AIScore = &score
	}
	c.ScoreHistory = append([]models.ScoreEntry(nil), idea.ScoreHistory...)
	c.Interests = append([]models.Interest(nil), idea.Interests...)
	return &c
}
