// internal/workers/idea/create-idea-record/models.go
package createidearecord

import "ideaforge-workers/internal/models"

type Input struct {
	Idea         models.Idea `json:"idea"`
	Entrepreneur Submitter   `json:"entrepreneur"`
	DemoMode     bool        `json:"demoMode,omitempty"`
}

// Submitter is the authenticated user creating the idea.
type Submitter struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Avatar string `json:"avatar,omitempty"`
	Role   string `json:"role,omitempty"`
}

type Output struct {
	IdeaID    string `json:"ideaId"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
	Indexed   bool   `json:"indexed"`
	Demo      bool   `json:"demo,omitempty"`
}
