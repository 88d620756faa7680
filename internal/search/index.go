// Package search keeps the Elasticsearch idea index used for candidate pools
// and full-text listings.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"ideaforge-workers/internal/models"
	"ideaforge-workers/internal/repository"
)

var ErrSearchFailed = errors.New("SEARCH_QUERY_FAILED")

// IdeaIndex reads and writes idea documents in one Elasticsearch index.
type IdeaIndex struct {
	client *elasticsearch.Client
	index  string
}

// NewIdeaIndex creates an index wrapper
func NewIdeaIndex(client *elasticsearch.Client, index string) *IdeaIndex {
	return &IdeaIndex{client: client, index: index}
}

func (x *IdeaIndex) Name() string {
	return x.index
}

// document is the indexed form of an idea: the author is normalized to an
// object and the sortable derived fields are added.
func document(idea models.Idea) (map[string]interface{}, error) {
	data, err := json.Marshal(idea)
	if err != nil {
		return nil, err
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	doc["entrepreneur"] = map[string]interface{}{
		"id":     idea.Entrepreneur.ID,
		"name":   idea.Entrepreneur.DisplayName(),
		"avatar": idea.Entrepreneur.AvatarURL(),
	}
	doc["entrepreneurId"] = idea.Entrepreneur.ID
	doc["interestCount"] = len(idea.Interests)
	for _, k := range []string{"createdAt", "updatedAt"} {
		if s, _ := doc[k].(string); s == "" {
			delete(doc, k)
		}
	}
	return doc, nil
}

// Index writes idea under its ID, replacing any previous version.
func (x *IdeaIndex) Index(ctx context.Context, idea models.Idea) error {
	doc, err := document(idea)
	if err != nil {
		return fmt.Errorf("encode idea %s: %w", idea.ID, err)
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode idea %s: %w", idea.ID, err)
	}

	res, err := esapi.IndexRequest{
		Index:      x.index,
		DocumentID: idea.ID,
		Body:       bytes.NewReader(body),
	}.Do(ctx, x.client)
	if err != nil {
		return fmt.Errorf("%w: index %s: %v", ErrSearchFailed, idea.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("%w: index %s: %s", ErrSearchFailed, idea.ID, res.String())
	}
	return nil
}

// SearchCandidates returns up to size public ideas to compare against target.
func (x *IdeaIndex) SearchCandidates(ctx context.Context, target models.Idea, size int) ([]models.Idea, error) {
	return x.search(ctx, buildCandidateQuery(target, size))
}

// Search runs a listing query with the same semantics as repository.List.
func (x *IdeaIndex) Search(ctx context.Context, filter repository.ListFilter) ([]models.Idea, error) {
	return x.search(ctx, buildListQuery(filter))
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source models.Idea `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (x *IdeaIndex) search(ctx context.Context, query map[string]interface{}) ([]models.Idea, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	res, err := esapi.SearchRequest{
		Index: []string{x.index},
		Body:  bytes.NewReader(body),
	}.Do(ctx, x.client)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrSearchFailed, res.String())
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrSearchFailed, err)
	}

	ideas := make([]models.Idea, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		ideas = append(ideas, hit.Source)
	}
	return ideas, nil
}
