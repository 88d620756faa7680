package engine

import (
	"strings"

	"ideaforge-workers/internal/models"
)

// Validation messages, in reporting order.
const (
	IssueTitleMissing    = "Provide a clear, descriptive title."
	IssueTitleSymbols    = "Title must contain meaningful words, not just symbols or links."
	IssueTaglineShort    = "Add a descriptive one-liner tagline (10+ chars)."
	IssueProblemShort    = "Expand the problem statement (40+ chars)."
	IssueSolutionShort   = "Expand the proposed solution (40+ chars)."
	IssueUniquenessShort = "Describe what makes your solution unique (20+ chars)."
	IssueLinkOnly        = "Problem/Solution must describe context, not only a link."
	IssuePlaceholder     = "Remove placeholder or non-context content (e.g., lorem ipsum, test, 12345)."
	IssueRepeatedChars   = "Avoid long repeated characters or spam-like content."
)

const (
	minTitleAlphaRatio  = 0.4
	minTaglineLength    = 10
	minNarrativeLength  = 40
	minUniquenessLength = 20
)

// Validate gates a submission. Every rule is checked and all failures are
// reported; an empty result means the idea passes.
func Validate(idea models.Idea) []string {
	issues := []string{}

	title := idea.Title
	tagline := strings.TrimSpace(idea.Tagline)
	problem := idea.ProblemStatement
	solution := idea.ProposedSolution

	if isBlank(title) {
		issues = append(issues, IssueTitleMissing)
	}
	if AlphaRatio(title) < minTitleAlphaRatio {
		issues = append(issues, IssueTitleSymbols)
	}
	if runeLen(tagline) < minTaglineLength {
		issues = append(issues, IssueTaglineShort)
	}
	if runeLen(strings.TrimSpace(problem)) < minNarrativeLength {
		issues = append(issues, IssueProblemShort)
	}
	if runeLen(strings.TrimSpace(solution)) < minNarrativeLength {
		issues = append(issues, IssueSolutionShort)
	}
	if runeLen(strings.TrimSpace(idea.Uniqueness)) < minUniquenessLength {
		issues = append(issues, IssueUniquenessShort)
	}
	if IsURLOnly(problem) || IsURLOnly(solution) {
		issues = append(issues, IssueLinkOnly)
	}
	if IsPlaceholder(title) || IsPlaceholder(idea.Tagline) || IsPlaceholder(problem) || IsPlaceholder(solution) {
		issues = append(issues, IssuePlaceholder)
	}
	if HasRepeatedChars(problem + solution) {
		issues = append(issues, IssueRepeatedChars)
	}

	return issues
}
