package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideaforge-workers/internal/models"
)

func validRecord() models.Idea {
	return models.Idea{
		Title:              "AI Tutor",
		Tagline:            "Personal tutoring for every student",
		Category:           "EdTech",
		Stage:              "Prototype",
		ProblemStatement:   "Students lack individual attention.",
		ProposedSolution:   "Adaptive lessons.",
		Uniqueness:         "Curriculum aligned.",
		TargetAudience:     "Individuals",
		MarketSize:         "Large (> $10B)",
		CustomerValidation: "Pilot with 3 schools.",
		CurrentProgress:    "mvp",
		BusinessModel:      "Subscription",
		Visibility:         models.VisibilityPublic,
	}
}

func TestValidate_IdeaRecordSchema(t *testing.T) {
	tests := []struct {
		name         string
		mutate       func(i *models.Idea)
		wantIssues   int
		wantContains string
	}{
		{name: "valid record", mutate: func(i *models.Idea) {}},
		{
			name:         "unknown category",
			mutate:       func(i *models.Idea) { i.Category = "Space" },
			wantIssues:   1,
			wantContains: "category",
		},
		{
			name:         "blank title is required",
			mutate:       func(i *models.Idea) { i.Title = "" },
			wantIssues:   1,
			wantContains: "title",
		},
		{
			name:         "whitespace title",
			mutate:       func(i *models.Idea) { i.Title = "   " },
			wantIssues:   1,
			wantContains: "title",
		},
		{
			name: "lowercase stage and bad visibility",
			mutate: func(i *models.Idea) {
				i.Stage = "idea"
				i.Visibility = "friends"
			},
			wantIssues: 2,
		},
		{
			name:   "visibility may be omitted",
			mutate: func(i *models.Idea) { i.Visibility = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idea := validRecord()
			tt.mutate(&idea)

			doc, err := ToDocument(idea)
			require.NoError(t, err)

			issues, err := Validate(IdeaRecordSchema(), doc)
			require.NoError(t, err)
			assert.Len(t, issues, tt.wantIssues, "issues: %v", issues)
			if tt.wantContains != "" {
				assert.Contains(t, issues[0], tt.wantContains)
			}
		})
	}
}

func TestValidate_EmptySchema(t *testing.T) {
	issues, err := Validate(nil, map[string]interface{}{"anything": 1})
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestToDocument_DropsEmptyStrings(t *testing.T) {
	doc, err := ToDocument(models.Idea{Title: "x"})
	require.NoError(t, err)
	assert.Equal(t, "x", doc["title"])
	_, hasTagline := doc["tagline"]
	assert.False(t, hasTagline)
}
