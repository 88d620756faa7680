// internal/workers/idea/express-interest/models.go
package expressinterest

type Investor struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
	Title string `json:"title,omitempty"`
}

type Input struct {
	IdeaID   string   `json:"ideaId"`
	Investor Investor `json:"investor"`
	Message  string   `json:"message,omitempty"`
}

type Output struct {
	InterestCount  int    `json:"interestCount"`
	NotificationID string `json:"notificationId,omitempty"`
	RecipientID    string `json:"recipientId"`
}
