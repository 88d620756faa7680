package engine

// Subscore names, in the order they are summed.
const (
	Completeness    = "completeness"
	Clarity         = "clarity"
	Differentiation = "differentiation"
	MarketPotential = "marketPotential"
	Traction        = "traction"
	Feasibility     = "feasibility"
	BusinessModel   = "businessModel"
	Professionalism = "professionalism"
)

// SubscoreNames lists every subscore in summation order.
var SubscoreNames = []string{
	Completeness,
	Clarity,
	Differentiation,
	MarketPotential,
	Traction,
	Feasibility,
	BusinessModel,
	Professionalism,
}

// Weights sum to 1.
var Weights = map[string]float64{
	Completeness:    0.15,
	Clarity:         0.15,
	Differentiation: 0.15,
	MarketPotential: 0.10,
	Traction:        0.15,
	Feasibility:     0.15,
	BusinessModel:   0.05,
	Professionalism: 0.10,
}

// StageFeasibility maps both stage labels and progress slugs; keys are
// matched exactly first, then lowercased.
var StageFeasibility = map[string]float64{
	"Idea":            0.3,
	"Prototype":       0.6,
	"MVP Ready":       0.7,
	"Early Customers": 0.8,
	"Growth":          0.9,
	"Scaling":         1.0,
	"early-users":     0.75,
	"prototype":       0.6,
	"mvp":             0.7,
	"revenue":         0.9,
}

const defaultFeasibility = 0.4

// Similarity term weights.
const (
	CategoryWeight      = 0.40
	KeywordWeight       = 0.30
	AudienceWeight      = 0.15
	StageWeight         = 0.10
	BusinessModelWeight = 0.05
)

const (
	SimilarityKeywordLimit = 20
	SWOTKeywordLimit       = 30
	DefaultMaxResults      = 6
	SimilarityThreshold    = 0.1
)

var StopWords = toSet(
	"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for", "of", "with", "by",
	"is", "are", "was", "were", "be", "been", "being", "have", "has", "had", "will", "would",
	"could", "should", "may", "might", "can", "this", "that", "these", "those", "i", "you", "he",
	"she", "it", "we", "they", "me", "him", "her", "us", "them", "my", "your", "his",
	"its", "our", "their", "am", "do", "does", "did", "get", "go", "make", "take", "come", "see",
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
