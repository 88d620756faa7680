package validation

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/xeipuuv/gojsonschema"
)

// Validate checks doc against a JSON schema given as a Go map. It returns one
// human-readable issue per violation, ordered by field. An error means the
// schema itself could not be used.
func Validate(schemaMap map[string]interface{}, doc interface{}) ([]string, error) {
	if len(schemaMap) == 0 {
		return nil, nil
	}

	schemaLoader := gojsonschema.NewGoLoader(schemaMap)
	documentLoader := gojsonschema.NewGoLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	issues := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		issues[i] = desc.String()
	}
	sort.Strings(issues)
	return issues, nil
}

// ToDocument converts v to the generic map form gojsonschema validates,
// dropping empty strings so that "required" also rejects blank values.
func ToDocument(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	for k, val := range doc {
		if s, ok := val.(string); ok && s == "" {
			delete(doc, k)
		}
	}
	return doc, nil
}
