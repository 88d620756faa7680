package engine

import (
	"math"
	"regexp"
	"strings"

	"ideaforge-workers/internal/models"
)

const (
	WarnIncomplete       = "Complete all required sections to improve score."
	WarnUnclear          = "Clarify problem and solution with concrete sentences and examples."
	WarnUndifferentiated = "Explain how you differ from competitors more clearly."
	WarnNoTraction       = "Add customer validation or traction metrics."
)

var (
	largeMarketRe  = regexp.MustCompile(`(?i)Large|>\s*\$?10B|10\s*B`)
	mediumMarketRe = regexp.MustCompile(`(?i)Medium|\$?1B\s*-\s*\$?10B`)
	tractionTermRe = regexp.MustCompile(`(?i)users?|mrr|revenue|signup|waitlist|pilot|poc`)
	shoutingRe     = regexp.MustCompile(`\b[A-Z]{4,}\b`)
)

// Breakdown holds the eight subscores, each in [0,1].
type Breakdown struct {
	Completeness    float64 `json:"completeness" yaml:"completeness"`
	Clarity         float64 `json:"clarity" yaml:"clarity"`
	Differentiation float64 `json:"differentiation" yaml:"differentiation"`
	MarketPotential float64 `json:"marketPotential" yaml:"marketPotential"`
	Traction        float64 `json:"traction" yaml:"traction"`
	Feasibility     float64 `json:"feasibility" yaml:"feasibility"`
	BusinessModel   float64 `json:"businessModel" yaml:"businessModel"`
	Professionalism float64 `json:"professionalism" yaml:"professionalism"`
}

// Values returns the subscores keyed by their names in SubscoreNames.
func (b Breakdown) Values() map[string]float64 {
	return map[string]float64{
		Completeness:    b.Completeness,
		Clarity:         b.Clarity,
		Differentiation: b.Differentiation,
		MarketPotential: b.MarketPotential,
		Traction:        b.Traction,
		Feasibility:     b.Feasibility,
		BusinessModel:   b.BusinessModel,
		Professionalism: b.Professionalism,
	}
}

// Total is the weighted sum of the subscores scaled to 0..100 and rounded.
func (b Breakdown) Total() int {
	values := b.Values()
	sum := 0.0
	for _, name := range SubscoreNames {
		sum += Weights[name] * values[name]
	}
	return clampScore(int(math.Round(sum * 100)))
}

// EvaluationResult is the engine's verdict on one idea: the 0..100 score, the
// subscores behind it and the improvement warnings, in a fixed order.
type EvaluationResult struct {
	Score     int       `json:"score"`
	Breakdown Breakdown `json:"breakdown"`
	Warnings  []string  `json:"warnings"`
}

// Evaluate scores an idea from 0 to 100. An idea with none of the narrative
// fields filled in scores 0.
func Evaluate(idea models.Idea) EvaluationResult {
	b := Breakdown{
		Completeness:    completeness(idea),
		Clarity:         clarity(idea),
		Differentiation: LengthQuality(idea.Uniqueness, 20, 80),
		MarketPotential: marketPotential(idea.MarketSize),
		Traction:        traction(idea.CustomerValidation),
		Feasibility:     feasibility(idea.Stage, idea.DemoURL),
		BusinessModel:   businessModel(idea.BusinessModel),
		Professionalism: professionalism(idea),
	}

	score := 0
	if b.Completeness > 0 {
		score = b.Total()
	}

	warnings := []string{}
	if b.Completeness < 0.6 {
		warnings = append(warnings, WarnIncomplete)
	}
	if b.Clarity < 0.6 {
		warnings = append(warnings, WarnUnclear)
	}
	if b.Differentiation < 0.6 {
		warnings = append(warnings, WarnUndifferentiated)
	}
	if b.Traction < 0.5 {
		warnings = append(warnings, WarnNoTraction)
	}

	return EvaluationResult{Score: score, Breakdown: b, Warnings: warnings}
}

func narrativeFields(idea models.Idea) []string {
	return []string{idea.Title, idea.Tagline, idea.ProblemStatement, idea.ProposedSolution, idea.Uniqueness}
}

func completeness(idea models.Idea) float64 {
	fields := narrativeFields(idea)
	filled := 0
	for _, f := range fields {
		if !isBlank(f) {
			filled++
		}
	}
	return float64(filled) / float64(len(fields))
}

// clarity buckets the mean sentence length of the problem and solution.
// With neither written it is 0.
func clarity(idea models.Idea) float64 {
	sum, n := 0.0, 0
	for _, text := range []string{idea.ProblemStatement, idea.ProposedSolution} {
		if avg := AvgSentenceLength(text); avg > 0 {
			sum += avg
			n++
		}
	}

	var score float64
	avg := 0.0
	if n > 0 {
		avg = sum / float64(n)
	}
	switch {
	case n == 0:
		score = 0
	case avg < 8:
		score = 0.5
	case avg <= 28:
		score = 1
	case avg <= 40:
		score = 0.7
	default:
		score = 0.4
	}
	if HasRepeatedChars(idea.ProblemStatement + idea.ProposedSolution) {
		score -= 0.2
	}
	return math.Max(0, score)
}

func marketPotential(size string) float64 {
	switch {
	case largeMarketRe.MatchString(size):
		return 1
	case mediumMarketRe.MatchString(size):
		return 0.7
	case size != "":
		return 0.4
	default:
		return 0.2
	}
}

func traction(validation string) float64 {
	score := 0.0
	if runeLen(validation) > 20 {
		score += 0.4
	}
	if hasDigit(validation) {
		score += 0.3
	}
	if tractionTermRe.MatchString(validation) {
		score += 0.3
	}
	return math.Min(1, score)
}

func feasibility(stage, demoURL string) float64 {
	score, ok := StageFeasibility[stage]
	if !ok {
		score, ok = StageFeasibility[strings.ToLower(stage)]
	}
	if !ok {
		score = defaultFeasibility
	}
	if demoURL != "" {
		score += 0.1
	}
	return math.Min(1, score)
}

func businessModel(model string) float64 {
	if model != "" {
		return 0.8
	}
	return 0.3
}

func professionalism(idea models.Idea) float64 {
	text := strings.Join(narrativeFields(idea), " ")

	penalty := math.Min(0.4, 0.05*float64(len(shoutingRe.FindAllStringIndex(text, -1))))
	if IsURLOnly(idea.Tagline) {
		penalty += 0.3
	}
	if HasRepeatedChars(text) {
		penalty += 0.3
	}
	return math.Max(0, 1-penalty)
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
