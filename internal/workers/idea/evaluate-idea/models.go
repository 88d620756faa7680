// internal/workers/idea/evaluate-idea/models.go
package evaluateidea

import "ideaforge-workers/internal/models"

// Input names a stored idea, carries one inline, or both. With both, the
// inline fields are scored and the result is recorded on the stored idea.
type Input struct {
	IdeaID string       `json:"ideaId,omitempty"`
	Idea   *models.Idea `json:"idea,omitempty"`
}

type Output struct {
	Score         int                `json:"score"`
	Breakdown     map[string]float64 `json:"breakdown"`
	Warnings      []string           `json:"warnings"`
	Suggestions   []string           `json:"suggestions"`
	Source        string             `json:"source"`
	PreviousScore *int               `json:"previousScore"`
	Cached        bool               `json:"cached"`
	EvaluatedAt   string             `json:"evaluatedAt"`
}

const SourceHeuristic = "heuristic"
