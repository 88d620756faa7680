package search

import (
	"ideaforge-workers/internal/engine"
	"ideaforge-workers/internal/models"
	"ideaforge-workers/internal/repository"
)

// Mapping is the index definition for idea documents. Author, history and
// interest payloads are stored but not indexed.
const Mapping = `{
  "mappings": {
    "properties": {
      "id":               {"type": "keyword"},
      "title":            {"type": "text"},
      "tagline":          {"type": "text"},
      "description":      {"type": "text"},
      "problemStatement": {"type": "text"},
      "proposedSolution": {"type": "text"},
      "category":         {"type": "keyword"},
      "stage":            {"type": "keyword"},
      "targetAudience":   {"type": "keyword"},
      "businessModel":    {"type": "keyword"},
      "status":           {"type": "keyword"},
      "visibility":       {"type": "keyword"},
      "entrepreneurId":   {"type": "keyword"},
      "aiScore":          {"type": "integer"},
      "views":            {"type": "integer"},
      "interestCount":    {"type": "integer"},
      "featured":         {"type": "boolean"},
      "createdAt":        {"type": "date"},
      "updatedAt":        {"type": "date"},
      "entrepreneur":     {"type": "object", "enabled": false},
      "scoreHistory":     {"type": "object", "enabled": false},
      "interests":        {"type": "object", "enabled": false}
    }
  }
}`

func term(field string, value interface{}) map[string]interface{} {
	return map[string]interface{}{"term": map[string]interface{}{field: value}}
}

func terms(field string, values []string) map[string]interface{} {
	return map[string]interface{}{"terms": map[string]interface{}{field: values}}
}

// buildCandidateQuery selects public listed ideas other than the target,
// ranking ideas that share the target's category or wording first.
func buildCandidateQuery(target models.Idea, size int) map[string]interface{} {
	filter := []interface{}{
		term("visibility", models.VisibilityPublic),
		terms("status", models.ListedStatuses),
	}
	var mustNot []interface{}
	if target.ID != "" {
		mustNot = append(mustNot, term("id", target.ID))
	}

	var should []interface{}
	if target.Category != "" {
		should = append(should, map[string]interface{}{
			"term": map[string]interface{}{"category": map[string]interface{}{"value": target.Category, "boost": 2}},
		})
	}
	if text := target.Title + " " + target.Tagline; len(engine.Keywords(text, engine.SimilarityKeywordLimit)) > 0 {
		should = append(should, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  text,
				"fields": []string{"title^3", "tagline^2", "problemStatement", "proposedSolution"},
				"type":   "best_fields",
			},
		})
	}

	boolQuery := map[string]interface{}{"filter": filter}
	if len(mustNot) > 0 {
		boolQuery["must_not"] = mustNot
	}
	if len(should) > 0 {
		boolQuery["should"] = should
	}

	return map[string]interface{}{
		"size":  size,
		"query": map[string]interface{}{"bool": boolQuery},
	}
}

// buildListQuery mirrors repository.ListFilter.
func buildListQuery(f repository.ListFilter) map[string]interface{} {
	var filter, must []interface{}

	if len(f.Statuses) > 0 {
		filter = append(filter, terms("status", f.Statuses))
	}
	if f.Visibility != "" {
		filter = append(filter, term("visibility", f.Visibility))
	}
	if f.EntrepreneurID != "" {
		filter = append(filter, term("entrepreneurId", f.EntrepreneurID))
	}
	if f.Category != "" {
		filter = append(filter, term("category", f.Category))
	}
	if f.Stage != "" {
		filter = append(filter, term("stage", f.Stage))
	}
	if f.MinScore > 0 {
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{"aiScore": map[string]interface{}{"gte": f.MinScore}},
		})
	}
	if f.FeaturedOnly {
		filter = append(filter, term("featured", true))
	}
	if f.Search != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  f.Search,
				"fields": []string{"title^3", "tagline^2", "problemStatement"},
				"type":   "best_fields",
			},
		})
	}

	boolQuery := map[string]interface{}{}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}
	if len(must) > 0 {
		boolQuery["must"] = must
	}
	if f.ExcludeID != "" {
		boolQuery["must_not"] = []interface{}{term("id", f.ExcludeID)}
	}

	return map[string]interface{}{
		"size":  f.EffectiveLimit(),
		"query": map[string]interface{}{"bool": boolQuery},
		"sort":  sortClause(f.Sort, f.Search != ""),
	}
}

func sortClause(order string, relevance bool) []interface{} {
	desc := func(field string) map[string]interface{} {
		return map[string]interface{}{field: map[string]interface{}{"order": "desc", "missing": "_last"}}
	}
	switch order {
	case repository.SortRecent:
		return []interface{}{desc("createdAt")}
	case repository.SortViews:
		return []interface{}{desc("views"), desc("createdAt")}
	case repository.SortInterests:
		return []interface{}{desc("interestCount"), desc("createdAt")}
	}
	if relevance {
		return []interface{}{"_score", desc("aiScore")}
	}
	return []interface{}{desc("aiScore"), desc("createdAt")}
}
