// internal/workers/idea/validate-idea/models.go
package validateidea

import "ideaforge-workers/internal/models"

type Input struct {
	Idea models.Idea `json:"idea"`
}

type Output struct {
	IsValid    bool     `json:"isValid"`
	Issues     []string `json:"issues"`
	IssueCount int      `json:"issueCount"`
}
