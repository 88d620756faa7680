package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideaforge-workers/internal/models"
)

func TestWeightsSumToOne(t *testing.T) {
	require.Len(t, Weights, len(SubscoreNames))
	sum := 0.0
	for _, name := range SubscoreNames {
		w, ok := Weights[name]
		require.True(t, ok, name)
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestEvaluate_EmptyIdea(t *testing.T) {
	result := Evaluate(models.Idea{})

	assert.Equal(t, 0, result.Score)
	assert.Equal(t, 0.0, result.Breakdown.Completeness)
	assert.Equal(t, 0.0, result.Breakdown.Clarity)
	assert.Equal(t, []string{WarnIncomplete, WarnUnclear, WarnUndifferentiated, WarnNoTraction}, result.Warnings)
}

func TestEvaluate_TitleAndTaglineOnly(t *testing.T) {
	result := Evaluate(models.Idea{
		Title:   "Solar kiosks for rural clinics",
		Tagline: "Reliable power where it matters",
	})

	assert.Equal(t, 0.0, result.Breakdown.Clarity)
	assert.Equal(t, 0.4, result.Breakdown.Completeness)
	// 0.06 completeness + 0.02 market + 0.06 feasibility + 0.015 model + 0.1 professionalism
	assert.InDelta(t, 25.5, float64(result.Score), 0.51)
	assert.Contains(t, result.Warnings, WarnUnclear)
}

func TestEvaluate_StrongIdea(t *testing.T) {
	result := Evaluate(createTestIdea())

	assert.GreaterOrEqual(t, result.Score, 80)
	assert.InDelta(t, 88.5, float64(result.Score), 0.51)
	assert.Equal(t, 1.0, result.Breakdown.Traction)
	assert.Equal(t, 1.0, result.Breakdown.Feasibility)
	assert.Equal(t, 1.0, result.Breakdown.Completeness)
	assert.Equal(t, 1.0, result.Breakdown.Clarity)
	assert.Equal(t, 0.2, result.Breakdown.MarketPotential)
	assert.Equal(t, 0.3, result.Breakdown.BusinessModel)
	assert.Empty(t, result.Warnings)
}

func TestEvaluate_Subscores(t *testing.T) {
	tests := []struct {
		name           string
		mutate         func(i *models.Idea)
		validateOutput func(t *testing.T, b Breakdown)
	}{
		{
			name:   "large market",
			mutate: func(i *models.Idea) { i.MarketSize = "Large (> $10B)" },
			validateOutput: func(t *testing.T, b Breakdown) {
				assert.Equal(t, 1.0, b.MarketPotential)
			},
		},
		{
			name:   "medium market",
			mutate: func(i *models.Idea) { i.MarketSize = "Medium ($1B - $10B)" },
			validateOutput: func(t *testing.T, b Breakdown) {
				assert.Equal(t, 0.7, b.MarketPotential)
			},
		},
		{
			name:   "other market",
			mutate: func(i *models.Idea) { i.MarketSize = "Small (< $1B)" },
			validateOutput: func(t *testing.T, b Breakdown) {
				assert.Equal(t, 0.4, b.MarketPotential)
			},
		},
		{
			name:   "stage slug falls back to lowercase lookup",
			mutate: func(i *models.Idea) { i.Stage = "MVP"; i.DemoURL = "" },
			validateOutput: func(t *testing.T, b Breakdown) {
				assert.InDelta(t, 0.7, b.Feasibility, 1e-9)
			},
		},
		{
			name:   "unknown stage uses default plus demo bonus",
			mutate: func(i *models.Idea) { i.Stage = "Series Z" },
			validateOutput: func(t *testing.T, b Breakdown) {
				assert.InDelta(t, 0.5, b.Feasibility, 1e-9)
			},
		},
		{
			name:   "early users slug",
			mutate: func(i *models.Idea) { i.Stage = "early-users"; i.DemoURL = "" },
			validateOutput: func(t *testing.T, b Breakdown) {
				assert.Equal(t, 0.75, b.Feasibility)
			},
		},
		{
			name:   "traction without digits",
			mutate: func(i *models.Idea) { i.CustomerValidation = "a few pilot conversations so far" },
			validateOutput: func(t *testing.T, b Breakdown) {
				assert.InDelta(t, 0.7, b.Traction, 1e-9)
			},
		},
		{
			name:   "business model present",
			mutate: func(i *models.Idea) { i.BusinessModel = "Subscription" },
			validateOutput: func(t *testing.T, b Breakdown) {
				assert.Equal(t, 0.8, b.BusinessModel)
			},
		},
		{
			name: "repeated characters penalise clarity and professionalism",
			mutate: func(i *models.Idea) {
				i.ProblemStatement += " Sooooo many students fall behind."
			},
			validateOutput: func(t *testing.T, b Breakdown) {
				assert.InDelta(t, 0.8, b.Clarity, 1e-9)
				assert.InDelta(t, 0.7, b.Professionalism, 1e-9)
			},
		},
		{
			name: "shouting and link-only tagline",
			mutate: func(i *models.Idea) {
				i.Tagline = "https://tutor.example.com"
				i.Title = "BEST TUTOR EVER BUILT FOR RURAL SCHOOLS"
			},
			validateOutput: func(t *testing.T, b Breakdown) {
				// Six shouted words cost 0.3, the link-only tagline another 0.3.
				assert.InDelta(t, 0.4, b.Professionalism, 1e-9)
			},
		},
		{
			name: "long-winded sentences",
			mutate: func(i *models.Idea) {
				i.ProblemStatement = "word word word word word word word word word word word word word word word word word word word word word word word word word word word word word word word word word"
				i.ProposedSolution = ""
			},
			validateOutput: func(t *testing.T, b Breakdown) {
				assert.Equal(t, 0.7, b.Clarity)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idea := createTestIdea()
			tt.mutate(&idea)
			tt.validateOutput(t, Evaluate(idea).Breakdown)
		})
	}
}

func TestEvaluate_Bounds(t *testing.T) {
	ideas := []models.Idea{
		{},
		createTestIdea(),
		{Title: "!!!!", Tagline: "http://x.io", ProblemStatement: "AAAA BBBB CCCC DDDD EEEE FFFF GGGG HHHH IIII"},
		{Title: "A", Stage: "Scaling", DemoURL: "x", CustomerValidation: "1000000 users revenue pilot mrr"},
	}
	for _, idea := range ideas {
		result := Evaluate(idea)
		assert.GreaterOrEqual(t, result.Score, 0)
		assert.LessOrEqual(t, result.Score, 100)
		for name, v := range result.Breakdown.Values() {
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), name)
			assert.GreaterOrEqual(t, v, 0.0, name)
			assert.LessOrEqual(t, v, 1.0, name)
		}
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	idea := createTestIdea()
	assert.Equal(t, Evaluate(idea), Evaluate(idea))
}

func TestEvaluate_MonotonicCompleteness(t *testing.T) {
	full := createTestIdea()
	setters := []func(i *models.Idea){
		func(i *models.Idea) { i.Title = full.Title },
		func(i *models.Idea) { i.Tagline = full.Tagline },
		func(i *models.Idea) { i.ProblemStatement = full.ProblemStatement },
		func(i *models.Idea) { i.ProposedSolution = full.ProposedSolution },
		func(i *models.Idea) { i.Uniqueness = full.Uniqueness },
	}

	var idea models.Idea
	prev := Evaluate(idea).Breakdown.Completeness
	for _, set := range setters {
		set(&idea)
		next := Evaluate(idea).Breakdown.Completeness
		assert.GreaterOrEqual(t, next, prev)
		prev = next
	}
	assert.Equal(t, 1.0, prev)
}

func TestBreakdown_Total(t *testing.T) {
	b := Breakdown{
		Completeness: 1, Clarity: 1, Differentiation: 1, MarketPotential: 1,
		Traction: 1, Feasibility: 1, BusinessModel: 1, Professionalism: 1,
	}
	assert.Equal(t, 100, b.Total())
	assert.Equal(t, 0, Breakdown{}.Total())
}
