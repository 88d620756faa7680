package engine

import (
	"sort"
	"strings"

	"ideaforge-workers/internal/models"
)

const maxSharedKeywords = 3

// SimilarityScore is one ranked candidate. Similarities lists the reasons in
// the order the terms are scored.
type SimilarityScore struct {
	IdeaID       string      `json:"ideaId"`
	Score        float64     `json:"score"`
	Similarities []string    `json:"similarities"`
	Idea         models.Idea `json:"idea"`
}

// FindSimilar ranks pool against target and returns at most maxResults
// candidates scoring above SimilarityThreshold, best first. The target itself
// is skipped when it appears in the pool. maxResults <= 0 means
// DefaultMaxResults.
func FindSimilar(target models.Idea, pool []models.Idea, maxResults int) []SimilarityScore {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	targetKeywords := fieldKeywords(target.Title, target.Tagline, target.ProblemStatement, target.ProposedSolution)

	results := []SimilarityScore{}
	for _, candidate := range pool {
		if target.ID != "" && candidate.ID == target.ID {
			continue
		}
		result := compare(target, targetKeywords, candidate)
		if result.Score > SimilarityThreshold {
			results = append(results, result)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}

func compare(target models.Idea, targetKeywords []string, candidate models.Idea) SimilarityScore {
	candidateKeywords := fieldKeywords(
		candidate.Title,
		candidate.Tagline,
		candidate.Description,
		candidate.ProblemStatement,
		candidate.ProposedSolution,
	)

	score := 0.0
	reasons := []string{}

	if sameValue(target.Category, candidate.Category) {
		score += CategoryWeight
		reasons = append(reasons, "Same category: "+candidate.Category)
	}

	keywordSim := Jaccard(targetKeywords, candidateKeywords)
	score += keywordSim * KeywordWeight
	if keywordSim > 0.1 {
		if shared := sharedKeywords(targetKeywords, candidateKeywords, maxSharedKeywords); len(shared) > 0 {
			reasons = append(reasons, "Similar keywords: "+strings.Join(shared, ", "))
		}
	}

	if sameValue(target.TargetAudience, candidate.TargetAudience) {
		score += AudienceWeight
		reasons = append(reasons, "Same target audience: "+candidate.TargetAudience)
	}
	if sameValue(target.Stage, candidate.Stage) {
		score += StageWeight
		reasons = append(reasons, "Same development stage: "+candidate.Stage)
	}
	if sameValue(target.BusinessModel, candidate.BusinessModel) {
		score += BusinessModelWeight
		reasons = append(reasons, "Same business model: "+candidate.BusinessModel)
	}

	return SimilarityScore{
		IdeaID:       candidate.ID,
		Score:        score,
		Similarities: reasons,
		Idea:         candidate,
	}
}

// Jaccard is |A∩B| / |A∪B| over the distinct elements of a and b. Either side
// empty gives 0.
func Jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := toSet(a...)
	setB := toSet(b...)

	intersection := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// SimilarityLabel buckets a similarity score for display.
func SimilarityLabel(score float64) string {
	switch {
	case score >= 0.7:
		return "Very Similar"
	case score >= 0.5:
		return "Moderately Similar"
	case score >= 0.3:
		return "Somewhat Similar"
	default:
		return "Loosely Related"
	}
}

func fieldKeywords(fields ...string) []string {
	var out []string
	for _, f := range fields {
		out = append(out, Keywords(f, SimilarityKeywordLimit)...)
	}
	return out
}

// sharedKeywords returns up to limit distinct words of a that also occur in b,
// in a's order.
func sharedKeywords(a, b []string, limit int) []string {
	inB := toSet(b...)
	seen := make(map[string]struct{}, limit)
	var out []string
	for _, w := range a {
		if _, ok := inB[w]; !ok {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
		if len(out) == limit {
			break
		}
	}
	return out
}

func sameValue(a, b string) bool {
	return a != "" && a == b
}
