// Package repository stores idea records and notifications. Postgres backs
// production; the in-memory implementation backs demo mode and tests.
package repository

import (
	"context"
	"errors"

	"ideaforge-workers/internal/models"
)

var (
	ErrNotFound = errors.New("IDEA_NOT_FOUND")
	// ErrDuplicateInterest is returned by AppendInterest when the investor is
	// already on the idea's interest list.
	ErrDuplicateInterest = errors.New("DUPLICATE_INTEREST")
)

// Listing sort orders.
const (
	SortScore     = "score"
	SortRecent    = "recent"
	SortViews     = "views"
	SortInterests = "interests"
)

// MaxListLimit caps the number of ideas a listing returns.
const MaxListLimit = 50

// ListFilter narrows a listing. Zero values do not filter.
type ListFilter struct {
	Category       string
	Stage          string
	MinScore       int
	Search         string
	FeaturedOnly   bool
	EntrepreneurID string
	Visibility     string
	Statuses       []string
	ExcludeID      string
	Sort           string
	Limit          int
	// MaxLimit raises the MaxListLimit cap for internal scans such as
	// similarity candidate pools.
	MaxLimit int
}

// EffectiveLimit clamps Limit to (0, MaxListLimit], or to MaxLimit when set.
func (f ListFilter) EffectiveLimit() int {
	max := MaxListLimit
	if f.MaxLimit > 0 {
		max = f.MaxLimit
	}
	if f.Limit <= 0 || f.Limit > max {
		return max
	}
	return f.Limit
}

// IdeaRepository is the idea store used by the workers. Update replaces the
// whole record; AppendInterest and RecordScore change a single field
// atomically and are safe to call from concurrent jobs.
type IdeaRepository interface {
	Get(ctx context.Context, id string) (*models.Idea, error)
	Add(ctx context.Context, idea *models.Idea) error
	Update(ctx context.Context, idea *models.Idea) error
	Remove(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]models.Idea, error)
	// AppendInterest adds interest unless its investor is already listed,
	// in which case it returns ErrDuplicateInterest. It returns the idea as
	// stored after the append.
	AppendInterest(ctx context.Context, id string, interest models.Interest, updatedAt string) (*models.Idea, error)
	// RecordScore sets the current score and appends entry to the history.
	RecordScore(ctx context.Context, id string, entry models.ScoreEntry) (*models.Idea, error)
}

// NotificationStore keeps in-app notifications.
type NotificationStore interface {
	Add(ctx context.Context, n *models.Notification) error
	ListForRecipient(ctx context.Context, recipientID string, limit int) ([]models.Notification, error)
}
