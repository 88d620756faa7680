package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"ideaforge-workers/internal/models"
)

// decodeFile reads YAML or JSON and re-encodes it as JSON so the idea's
// lenient decoder applies to both.
func decodeFile(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var doc interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", path, err)
	}
	return data, nil
}

func loadIdea(path string) (models.Idea, error) {
	var idea models.Idea
	data, err := decodeFile(path)
	if err != nil {
		return idea, err
	}
	if err := json.Unmarshal(data, &idea); err != nil {
		return idea, fmt.Errorf("decode idea in %s: %w", path, err)
	}
	return idea, nil
}

// loadPool accepts either a list of ideas or an object with an "ideas" list.
func loadPool(path string) ([]models.Idea, error) {
	data, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	var wrapped struct {
		Ideas []models.Idea `json:"ideas"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Ideas != nil {
		return wrapped.Ideas, nil
	}

	var pool []models.Idea
	if err := json.Unmarshal(data, &pool); err != nil {
		return nil, fmt.Errorf("%s: expected a list of ideas", path)
	}
	return pool, nil
}
