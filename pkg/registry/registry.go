// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

const Version = "1.0.0"

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	if problems := reg.Validate(); len(problems) > 0 {
		return nil, fmt.Errorf("invalid registry %s: %v", path, problems)
	}
	return &reg, nil
}

// Default is the built-in catalog of the idea workers.
func Default() *ActivityRegistry {
	return &ActivityRegistry{
		Version:     Version,
		LastUpdated: "2024-03-01",
		Activities: []Activity{
			{
				ID:          "validate-idea",
				DisplayName: "Validate Idea",
				Description: "Checks a submission for missing, placeholder or spam-like content",
				Category:    CategorySubmission,
				TaskType:    "validate-idea",
				ErrorCodes:  []string{"IDEA_SCHEMA_INVALID"},
				Timeout:     "5s",
				Workflows:   []string{"idea-submission"},
			},
			{
				ID:          "create-idea-record",
				DisplayName: "Create Idea Record",
				Description: "Stores a validated idea as pending and indexes it for search",
				Category:    CategorySubmission,
				TaskType:    "create-idea-record",
				ErrorCodes:  []string{"IDEA_SCHEMA_INVALID", "ACCESS_DENIED", "DATABASE_INSERT_FAILED"},
				Timeout:     "10s",
				Retries:     3,
				Workflows:   []string{"idea-submission"},
			},
			{
				ID:          "evaluate-idea",
				DisplayName: "Evaluate Idea",
				Description: "Scores an idea from 0 to 100 with a subscore breakdown and warnings",
				Category:    CategoryAnalysis,
				TaskType:    "evaluate-idea",
				ErrorCodes:  []string{"IDEA_SCHEMA_INVALID", "IDEA_NOT_FOUND", "DATABASE_QUERY_FAILED", "SCORING_TIMEOUT", "SCORING_FAILED"},
				Timeout:     "45s",
				Retries:     3,
				Workflows:   []string{"idea-submission", "idea-rescore"},
			},
			{
				ID:          "generate-swot",
				DisplayName: "Generate SWOT",
				Description: "Derives strengths, weaknesses, opportunities and threats",
				Category:    CategoryAnalysis,
				TaskType:    "generate-swot",
				ErrorCodes:  []string{"IDEA_SCHEMA_INVALID", "IDEA_NOT_FOUND", "DATABASE_QUERY_FAILED"},
				Timeout:     "10s",
				Retries:     3,
				Workflows:   []string{"idea-submission"},
			},
			{
				ID:          "find-similar-ideas",
				DisplayName: "Find Similar Ideas",
				Description: "Ranks listed ideas by similarity to a target idea",
				Category:    CategoryDiscovery,
				TaskType:    "find-similar-ideas",
				ErrorCodes:  []string{"IDEA_SCHEMA_INVALID", "IDEA_NOT_FOUND", "DATABASE_QUERY_FAILED"},
				Timeout:     "15s",
				Retries:     3,
				Workflows:   []string{"idea-submission", "idea-discovery"},
			},
			{
				ID:          "query-ideas",
				DisplayName: "Query Ideas",
				Description: "Filters, searches and sorts the idea listing",
				Category:    CategoryDiscovery,
				TaskType:    "query-ideas",
				ErrorCodes:  []string{"IDEA_SCHEMA_INVALID", "DATABASE_QUERY_FAILED"},
				Timeout:     "10s",
				Retries:     3,
				Workflows:   []string{"idea-discovery"},
			},
			{
				ID:          "express-interest",
				DisplayName: "Express Interest",
				Description: "Records investor interest and notifies the entrepreneur",
				Category:    CategoryEngagement,
				TaskType:    "express-interest",
				ErrorCodes:  []string{"IDEA_SCHEMA_INVALID", "ACCESS_DENIED", "IDEA_NOT_FOUND", "DUPLICATE_INTEREST", "DATABASE_QUERY_FAILED"},
				Timeout:     "10s",
				Retries:     3,
				Workflows:   []string{"investor-interest"},
			},
			{
				ID:          "send-notification",
				DisplayName: "Send Notification",
				Description: "Delivers a notification in-app, by email and by SMS",
				Category:    CategoryNotification,
				TaskType:    "send-notification",
				ErrorCodes:  []string{"INVALID_INPUT", "NOTIFICATION_SEND_FAILED"},
				Timeout:     "15s",
				Retries:     3,
				Workflows:   []string{"idea-submission", "investor-interest"},
			},
		},
	}
}

// Lookup finds the activity bound to taskType.
func (r *ActivityRegistry) Lookup(taskType string) (Activity, bool) {
	for _, a := range r.Activities {
		if a.TaskType == taskType {
			return a, true
		}
	}
	return Activity{}, false
}

// TaskTypes returns the registered task types, sorted.
func (r *ActivityRegistry) TaskTypes() []string {
	types := make([]string, 0, len(r.Activities))
	for _, a := range r.Activities {
		types = append(types, a.TaskType)
	}
	sort.Strings(types)
	return types
}

// Validate reports entries without an id or task type and duplicate task types.
func (r *ActivityRegistry) Validate() []string {
	var problems []string
	seen := make(map[string]bool, len(r.Activities))
	for i, a := range r.Activities {
		if a.ID == "" {
			problems = append(problems, fmt.Sprintf("activity %d: missing id", i))
		}
		if a.TaskType == "" {
			problems = append(problems, fmt.Sprintf("activity %d: missing taskType", i))
			continue
		}
		if seen[a.TaskType] {
			problems = append(problems, fmt.Sprintf("activity %d: duplicate taskType %s", i, a.TaskType))
		}
		seen[a.TaskType] = true
	}
	return problems
}
