package engine

import (
	"regexp"
	"strings"

	"ideaforge-workers/internal/models"
)

var (
	swotLargeMarketRe = regexp.MustCompile(`(?i)Large|>\s*\$?10B`)
	earlyStageRe      = regexp.MustCompile(`(?i)Idea|Prototype`)
	aiTopicRe         = regexp.MustCompile(`(?i)AI|machine learning|ml|automation`)
	greenTopicRe      = regexp.MustCompile(`(?i)sustainab|green|climate|energy`)
	healthTopicRe     = regexp.MustCompile(`(?i)health|medic|therapy|mental`)
	educationTopicRe  = regexp.MustCompile(`(?i)education|edtech|learning`)
	regulatedRe       = regexp.MustCompile(`(?i)fintech|payments|bank|lending|insurance`)
	healthCategoryRe  = regexp.MustCompile(`(?i)health`)
	aiRiskRe          = regexp.MustCompile(`(?i)ai|ml`)
	marketplaceRe     = regexp.MustCompile(`(?i)marketplace`)
)

const differentiationQuoteLen = 120

// Fallbacks used when a quadrant has no triggered entries.
const (
	FallbackStrength    = "Compelling narrative and potential for differentiation"
	FallbackWeakness    = "Key risks not fully articulated"
	FallbackOpportunity = "Emerging market dynamics to leverage"
	FallbackThreat      = "Execution and external risks to monitor"
)

// SWOTAnalysis lists are never empty.
type SWOTAnalysis struct {
	Strengths     []string `json:"strengths" yaml:"strengths"`
	Weaknesses    []string `json:"weaknesses" yaml:"weaknesses"`
	Opportunities []string `json:"opportunities" yaml:"opportunities"`
	Threats       []string `json:"threats" yaml:"threats"`
}

// GenerateSWOT derives a rule-based SWOT analysis from the idea's fields and
// the keywords of its narrative.
func GenerateSWOT(idea models.Idea) SWOTAnalysis {
	var s SWOTAnalysis

	var keywords []string
	for _, field := range narrativeFields(idea) {
		keywords = append(keywords, Keywords(field, SWOTKeywordLimit)...)
	}
	topics := strings.Join(keywords, " ")

	uniqueness := idea.Uniqueness
	validation := idea.CustomerValidation
	audience := idea.TargetAudience
	model := idea.BusinessModel

	if runeLen(uniqueness) > 30 {
		s.Strengths = append(s.Strengths, "Clear differentiation: "+truncate(uniqueness, differentiationQuoteLen))
	}
	if runeLen(idea.ProblemStatement) > 80 && runeLen(idea.ProposedSolution) > 80 {
		s.Strengths = append(s.Strengths, "Strong problem-solution articulation with tangible context")
	}
	if swotLargeMarketRe.MatchString(idea.MarketSize) {
		s.Strengths = append(s.Strengths, "Large market potential with room for scale")
	}
	if runeLen(validation) > 20 {
		s.Strengths = append(s.Strengths, "Early customer validation provides confidence")
	}
	if idea.DemoURL != "" {
		s.Strengths = append(s.Strengths, "Prototype/demo available for investor evaluation")
	}
	if model != "" {
		s.Strengths = append(s.Strengths, "Defined business model: "+model)
	}
	if audience != "" {
		s.Strengths = append(s.Strengths, "Well-defined target audience: "+audience)
	}

	if validation == "" {
		s.Weaknesses = append(s.Weaknesses, "Limited customer validation provided")
	}
	if idea.DemoURL == "" && earlyStageRe.MatchString(idea.Stage) {
		s.Weaknesses = append(s.Weaknesses, "Early stage without demo link may slow investor confidence")
	}
	if runeLen(uniqueness) < 20 {
		s.Weaknesses = append(s.Weaknesses, "Differentiation from competitors not strongly articulated")
	}
	if model == "" {
		s.Weaknesses = append(s.Weaknesses, "Business model not specified")
	}

	if idea.Category != "" {
		s.Opportunities = append(s.Opportunities, "Growing opportunity in "+idea.Category)
	}
	if aiTopicRe.MatchString(topics) {
		s.Opportunities = append(s.Opportunities, "Tailwinds from rapid AI ecosystem growth")
	}
	if greenTopicRe.MatchString(topics) {
		s.Opportunities = append(s.Opportunities, "ESG and sustainability investment interest")
	}
	if healthTopicRe.MatchString(topics) {
		s.Opportunities = append(s.Opportunities, "Rising demand for digital health solutions")
	}
	if educationTopicRe.MatchString(topics) {
		s.Opportunities = append(s.Opportunities, "Increased appetite for modern education platforms")
	}
	if audience == "Enterprises" {
		s.Opportunities = append(s.Opportunities, "Potential for high contract ACVs in enterprise segment")
	}

	if runeLen(idea.Competitors) > 10 {
		s.Threats = append(s.Threats, "Competitive landscape exists; need clear moat")
	}
	if regulatedRe.MatchString(idea.Category) {
		s.Threats = append(s.Threats, "Regulatory and compliance hurdles in FinTech")
	}
	if healthCategoryRe.MatchString(idea.Category) {
		s.Threats = append(s.Threats, "Clinical validation and regulatory approvals may be required")
	}
	if aiRiskRe.MatchString(topics) {
		s.Threats = append(s.Threats, "Data privacy, bias, and model drift risks in AI systems")
	}
	if marketplaceRe.MatchString(model) {
		s.Threats = append(s.Threats, "Chicken-and-egg dynamics for marketplace liquidity")
	}

	s.Strengths = ensure(s.Strengths, FallbackStrength)
	s.Weaknesses = ensure(s.Weaknesses, FallbackWeakness)
	s.Opportunities = ensure(s.Opportunities, FallbackOpportunity)
	s.Threats = ensure(s.Threats, FallbackThreat)
	return s
}

func ensure(list []string, fallback string) []string {
	if len(list) == 0 {
		return []string{fallback}
	}
	return list
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
