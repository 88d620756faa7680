package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"ideaforge-workers/internal/models"
)

// ==========================
// Helpers
// ==========================

func createTestIdea() models.Idea {
	return models.Idea{
		ID:                 "idea-1",
		Title:              "Offline adaptive tutoring platform for rural schools with unreliable internet access",
		Tagline:            "Personalized lessons that run on low cost tablets and sync progress whenever a connection appears",
		Category:           "EdTech",
		Stage:              "Scaling",
		ProblemStatement:   "Students in rural schools lack access to qualified teachers for math and science. Many classrooms share a single instructor across several grades.",
		ProposedSolution:   "Our tablet app delivers adaptive lessons that run fully offline and sync progress when a connection appears. Teachers get a dashboard that highlights which students need help.",
		Uniqueness:         "Unlike video courses, our tutor adapts every lesson to the pace of each student and works without internet.",
		TargetAudience:     "Niche Groups",
		CustomerValidation: "50 paying users, $10k MRR",
		DemoURL:            "https://demo.example.com",
	}
}

// ==========================
// Validate
// ==========================

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		idea     models.Idea
		validate func(t *testing.T, issues []string)
	}{
		{
			name: "valid idea has no issues",
			idea: createTestIdea(),
			validate: func(t *testing.T, issues []string) {
				assert.NotNil(t, issues)
				assert.Empty(t, issues)
			},
		},
		{
			name: "empty idea fires every required field rule",
			idea: models.Idea{},
			validate: func(t *testing.T, issues []string) {
				assert.GreaterOrEqual(t, len(issues), 5)
				assert.Equal(t, []string{
					IssueTitleMissing,
					IssueTitleSymbols,
					IssueTaglineShort,
					IssueProblemShort,
					IssueSolutionShort,
					IssueUniquenessShort,
				}, issues)
			},
		},
		{
			name: "lorem ipsum title is a placeholder",
			idea: models.Idea{
				Title:            "Lorem Ipsum Generator",
				Tagline:          "A tool for generating lorem ipsum text blocks",
				ProblemStatement: strings.Repeat("x", 50),
				ProposedSolution: strings.Repeat("y", 50),
				Uniqueness:       strings.Repeat("z", 25),
			},
			validate: func(t *testing.T, issues []string) {
				assert.Contains(t, issues, IssuePlaceholder)
				assert.Contains(t, issues, IssueRepeatedChars)
				assert.NotContains(t, issues, IssueTitleMissing)
			},
		},
		{
			name: "symbol title",
			idea: func() models.Idea {
				i := createTestIdea()
				i.Title = "$$$ 100% !!!"
				return i
			}(),
			validate: func(t *testing.T, issues []string) {
				assert.Equal(t, []string{IssueTitleSymbols}, issues)
			},
		},
		{
			name: "link-only problem",
			idea: func() models.Idea {
				i := createTestIdea()
				i.ProblemStatement = "https://example.com/a-very-long-path-describing-the-problem"
				return i
			}(),
			validate: func(t *testing.T, issues []string) {
				assert.Equal(t, []string{IssueLinkOnly}, issues)
			},
		},
		{
			name: "tagline is trimmed before measuring",
			idea: func() models.Idea {
				i := createTestIdea()
				i.Tagline = "   short      "
				return i
			}(),
			validate: func(t *testing.T, issues []string) {
				assert.Equal(t, []string{IssueTaglineShort}, issues)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validate(t, Validate(tt.idea))
		})
	}
}

func TestValidate_DoesNotMutateInput(t *testing.T) {
	idea := createTestIdea()
	idea.Tagline = "  padded tagline text  "
	before := idea

	Validate(idea)

	assert.Equal(t, before, idea)
}
