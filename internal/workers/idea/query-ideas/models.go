// internal/workers/idea/query-ideas/models.go
package queryideas

import "ideaforge-workers/internal/models"

type Input struct {
	Category       string `json:"category,omitempty"`
	Stage          string `json:"stage,omitempty"`
	MinScore       int    `json:"minScore,omitempty"`
	Sort           string `json:"sort,omitempty"`
	Search         string `json:"search,omitempty"`
	Featured       bool   `json:"featured,omitempty"`
	EntrepreneurID string `json:"entrepreneurId,omitempty"`
	Limit          int    `json:"limit,omitempty"`
}

type Output struct {
	Ideas  []models.Idea `json:"ideas"`
	Count  int           `json:"count"`
	Source string        `json:"source"`
}

// Result sources.
const (
	SourceSearch     = "search"
	SourceRepository = "repository"
)

// allFilter is the UI's "no filter" choice for category and stage.
const allFilter = "All"
