// internal/workers/idea/generate-swot/models.go
package generateswot

import "ideaforge-workers/internal/models"

type Input struct {
	IdeaID string       `json:"ideaId,omitempty"`
	Idea   *models.Idea `json:"idea,omitempty"`
}

type Output struct {
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	Opportunities []string `json:"opportunities"`
	Threats       []string `json:"threats"`
	Cached        bool     `json:"cached"`
}
