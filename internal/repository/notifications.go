package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"ideaforge-workers/internal/models"
)

type notificationRow struct {
	ID             string    `db:"id"`
	RecipientID    string    `db:"recipient_id"`
	Type           string    `db:"type"`
	Title          string    `db:"title"`
	Message        string    `db:"message"`
	IdeaID         string    `db:"idea_id"`
	RelatedUserID  string    `db:"related_user_id"`
	Read           bool      `db:"read"`
	ActionRequired bool      `db:"action_required"`
	CreatedAt      time.Time `db:"created_at"`
}

// PostgresNotificationStore keeps notifications in the notifications table.
type PostgresNotificationStore struct {
	db *sqlx.DB
}

// NewPostgresNotificationStore creates a store on an open connection
func NewPostgresNotificationStore(db *sqlx.DB) *PostgresNotificationStore {
	return &PostgresNotificationStore{db: db}
}

func (s *PostgresNotificationStore) Add(ctx context.Context, n *models.Notification) error {
	row := notificationRow{
		ID:             n.ID,
		RecipientID:    n.RecipientID,
		Type:           n.Type,
		Title:          n.Title,
		Message:        n.Message,
		IdeaID:         n.IdeaID,
		RelatedUserID:  n.RelatedUserID,
		Read:           n.Read,
		ActionRequired: n.ActionRequired,
		CreatedAt:      parseTime(n.CreatedAt),
	}
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO notifications
		(id, recipient_id, type, title, message, idea_id, related_user_id, read, action_required, created_at)
		VALUES (:id, :recipient_id, :type, :title, :message, :idea_id, :related_user_id, :read, :action_required, :created_at)`, row)
	if err != nil {
		return fmt.Errorf("insert notification %s: %w", n.ID, err)
	}
	return nil
}

// ListForRecipient returns the newest notifications first.
func (s *PostgresNotificationStore) ListForRecipient(ctx context.Context, recipientID string, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}
	var rows []notificationRow
	err := s.db.SelectContext(ctx, &rows, `SELECT id, recipient_id, type, title, message, idea_id,
		related_user_id, read, action_required, created_at
		FROM notifications WHERE recipient_id = $1 ORDER BY created_at DESC LIMIT $2`, recipientID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications for %s: %w", recipientID, err)
	}

	out := make([]models.Notification, len(rows))
	for i, r := range rows {
		out[i] = models.Notification{
			ID:             r.ID,
			RecipientID:    r.RecipientID,
			Type:           r.Type,
			Title:          r.Title,
			Message:        r.Message,
			IdeaID:         r.IdeaID,
			RelatedUserID:  r.RelatedUserID,
			Read:           r.Read,
			ActionRequired: r.ActionRequired,
			CreatedAt:      formatTime(r.CreatedAt),
		}
	}
	return out, nil
}

// MemoryNotificationStore backs demo mode and tests.
type MemoryNotificationStore struct {
	mu    sync.RWMutex
	items []models.Notification
}

// NewMemoryNotificationStore returns an empty store.
func NewMemoryNotificationStore() *MemoryNotificationStore {
	return &MemoryNotificationStore{}
}

func (s *MemoryNotificationStore) Add(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, *n)
	return nil
}

// ListForRecipient returns the newest notifications first.
func (s *MemoryNotificationStore) ListForRecipient(_ context.Context, recipientID string, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Notification
	for i := len(s.items) - 1; i >= 0; i-- {
		if s.items[i].RecipientID == recipientID {
			out = append(out, s.items[i])
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].CreatedAt > out[b].CreatedAt })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
