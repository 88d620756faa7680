// internal/models/notification.go
package models

// Notification is an in-app message for one recipient.
type Notification struct {
	ID             string                 `json:"id" db:"id"`
	RecipientID    string                 `json:"recipientId" db:"recipient_id"`
	Type           string                 `json:"type" db:"type"`
	Title          string                 `json:"title" db:"title"`
	Message        string                 `json:"message" db:"message"`
	IdeaID         string                 `json:"ideaId,omitempty" db:"idea_id"`
	RelatedUserID  string                 `json:"relatedUserId,omitempty" db:"related_user_id"`
	Data           map[string]interface{} `json:"data,omitempty" db:"-"`
	Read           bool                   `json:"read" db:"read"`
	ActionRequired bool                   `json:"actionRequired" db:"action_required"`
	CreatedAt      string                 `json:"createdAt" db:"created_at"`
}

// Notification types
const (
	NotificationInterest     = "interest"
	NotificationMessage      = "message"
	NotificationConnection   = "connection"
	NotificationScoreUpdate  = "score_update"
	NotificationReview       = "review"
	NotificationNewIdea      = "new_idea"
	NotificationWeeklyDigest = "weekly_digest"
)
