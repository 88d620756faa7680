package validation

import "ideaforge-workers/internal/models"

// IdeaRecordSchema is the persistence schema for an idea record: the fields a
// stored idea must carry and the closed sets its enum-like fields draw from.
func IdeaRecordSchema() map[string]interface{} {
	return map[string]interface{}{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type":    "object",
		"required": []interface{}{
			"title", "tagline", "category", "stage",
			"problemStatement", "proposedSolution", "uniqueness",
			"targetAudience", "marketSize", "customerValidation",
			"currentProgress", "businessModel",
		},
		"properties": map[string]interface{}{
			"title":           nonBlank(),
			"tagline":         nonBlank(),
			"category":        enum(models.Categories),
			"stage":           enum(models.Stages),
			"targetAudience":  enum(models.TargetAudiences),
			"marketSize":      enum(models.MarketSizes),
			"currentProgress": enum(models.Progresses),
			"businessModel":   enum(models.BusinessModels),
			"visibility":      enum(models.Visibilities),
		},
	}
}

func enum(values []string) map[string]interface{} {
	list := make([]interface{}, len(values))
	for i, v := range values {
		list[i] = v
	}
	return map[string]interface{}{"type": "string", "enum": list}
}

func nonBlank() map[string]interface{} {
	return map[string]interface{}{"type": "string", "pattern": `\S`}
}
