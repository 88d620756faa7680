// internal/workers/idea/find-similar-ideas/models.go
package findsimilarideas

import "ideaforge-workers/internal/models"

type Input struct {
	IdeaID     string       `json:"ideaId,omitempty"`
	Idea       *models.Idea `json:"idea,omitempty"`
	MaxResults int          `json:"maxResults,omitempty"`
}

type Output struct {
	Results    []SimilarIdea `json:"results"`
	PoolSize   int           `json:"poolSize"`
	PoolSource string        `json:"poolSource"`
}

// SimilarIdea is one ranked match, flattened for display.
type SimilarIdea struct {
	IdeaID       string      `json:"ideaId"`
	Score        float64     `json:"score"`
	Label        string      `json:"label"`
	Similarities []string    `json:"similarities"`
	Title        string      `json:"title"`
	AuthorName   string      `json:"authorName"`
	AuthorAvatar string      `json:"authorAvatar"`
	Idea         models.Idea `json:"idea"`
}

// Candidate pool sources.
const (
	PoolSourceSearch     = "search"
	PoolSourceRepository = "repository"
)
