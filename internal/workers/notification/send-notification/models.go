// internal/workers/notification/send-notification/models.go
package sendnotification

type Input struct {
	NotificationID string                 `json:"notificationId,omitempty"`
	RecipientID    string                 `json:"recipientId"`
	Email          string                 `json:"email,omitempty"`
	Phone          string                 `json:"phone,omitempty"`
	Type           string                 `json:"type"`
	Priority       string                 `json:"priority,omitempty"`
	IdeaID         string                 `json:"ideaId,omitempty"`
	Data           map[string]interface{} `json:"data,omitempty"`
}

type Output struct {
	NotificationID string          `json:"notificationId,omitempty"`
	Status         string          `json:"status"`
	SentAt         string          `json:"sentAt,omitempty"`
	Channels       []ChannelResult `json:"channels"`
}

// ChannelResult is the delivery outcome on one channel.
type ChannelResult struct {
	Channel   string `json:"channel"`
	Status    string `json:"status"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Delivery statuses.
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)
