package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideaforge-workers/internal/models"
	"ideaforge-workers/internal/repository"
)

type capturedRequest struct {
	Method string
	Path   string
	Body   map[string]interface{}
}

func newTestIndex(t *testing.T, status int, response string) (*IdeaIndex, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.Method = r.Method
		captured.Path = r.URL.Path
		data, _ := io.ReadAll(r.Body)
		if len(data) > 0 {
			_ = json.Unmarshal(data, &captured.Body)
		}
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{server.URL}})
	require.NoError(t, err)
	return NewIdeaIndex(es, "ideas"), captured
}

const twoHits = `{
  "hits": {
    "total": {"value": 2},
    "hits": [
      {"_id": "1", "_source": {"id": "1", "title": "AI Tutor", "category": "EdTech",
        "entrepreneur": {"id": "ent1", "name": "Sarah Chen", "avatar": "a.svg"}}},
      {"_id": "2", "_source": {"id": "2", "title": "Green Boxes", "category": "GreenTech", "aiScore": 85}}
    ]
  }
}`

func TestIdeaIndex_Index(t *testing.T) {
	index, captured := newTestIndex(t, http.StatusCreated, `{"result":"created"}`)

	err := index.Index(context.Background(), models.Idea{
		ID:           "idea-1",
		Title:        "AI Tutor",
		Entrepreneur: models.AuthorRef{Ref: "ent1", ID: "ent1"},
		Interests:    []models.Interest{{InvestorID: "inv1"}},
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, captured.Method)
	assert.Equal(t, "/ideas/_doc/idea-1", captured.Path)
	assert.Equal(t, "ent1", captured.Body["entrepreneurId"])
	assert.Equal(t, float64(1), captured.Body["interestCount"])
	author := captured.Body["entrepreneur"].(map[string]interface{})
	assert.Equal(t, "ent1", author["name"])
	_, hasCreated := captured.Body["createdAt"]
	assert.False(t, hasCreated)
}

func TestIdeaIndex_IndexError(t *testing.T) {
	index, _ := newTestIndex(t, http.StatusBadRequest, `{"error":"mapper_parsing_exception"}`)
	err := index.Index(context.Background(), models.Idea{ID: "x"})
	assert.ErrorIs(t, err, ErrSearchFailed)
}

func TestIdeaIndex_SearchCandidates(t *testing.T) {
	index, captured := newTestIndex(t, http.StatusOK, twoHits)

	ideas, err := index.SearchCandidates(context.Background(), models.Idea{
		ID: "target", Title: "Tutor platform", Category: "EdTech",
	}, 200)
	require.NoError(t, err)
	require.Len(t, ideas, 2)

	assert.Equal(t, "Sarah Chen", ideas[0].Entrepreneur.DisplayName())
	require.NotNil(t, ideas[1].AIScore)
	assert.Equal(t, 85, *ideas[1].AIScore)

	assert.Equal(t, "/ideas/_search", captured.Path)
	assert.Equal(t, float64(200), captured.Body["size"])
	boolQuery := captured.Body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	assert.Len(t, boolQuery["filter"], 2)
	assert.Len(t, boolQuery["must_not"], 1)
	assert.Len(t, boolQuery["should"], 2)
}

func TestIdeaIndex_SearchError(t *testing.T) {
	index, _ := newTestIndex(t, http.StatusInternalServerError, `{"error":"boom"}`)
	_, err := index.Search(context.Background(), repository.ListFilter{Search: "tutor"})
	assert.ErrorIs(t, err, ErrSearchFailed)
}

func TestBuildListQuery(t *testing.T) {
	tests := []struct {
		name     string
		filter   repository.ListFilter
		validate func(t *testing.T, q map[string]interface{})
	}{
		{
			name:   "empty filter sorts by score",
			filter: repository.ListFilter{},
			validate: func(t *testing.T, q map[string]interface{}) {
				assert.Equal(t, repository.MaxListLimit, q["size"])
				sort := q["sort"].([]interface{})
				assert.Contains(t, sort[0], "aiScore")
			},
		},
		{
			name: "search ranks by relevance",
			filter: repository.ListFilter{
				Search: "tutor", Category: "EdTech", MinScore: 50, FeaturedOnly: true,
				Statuses: models.ListedStatuses, Limit: 5,
			},
			validate: func(t *testing.T, q map[string]interface{}) {
				assert.Equal(t, 5, q["size"])
				boolQuery := q["query"].(map[string]interface{})["bool"].(map[string]interface{})
				assert.Len(t, boolQuery["filter"], 4)
				assert.Len(t, boolQuery["must"], 1)
				assert.Equal(t, "_score", q["sort"].([]interface{})[0])
			},
		},
		{
			name:   "interests sort",
			filter: repository.ListFilter{Sort: repository.SortInterests, ExcludeID: "x"},
			validate: func(t *testing.T, q map[string]interface{}) {
				sort := q["sort"].([]interface{})
				assert.Contains(t, sort[0], "interestCount")
				boolQuery := q["query"].(map[string]interface{})["bool"].(map[string]interface{})
				assert.Len(t, boolQuery["must_not"], 1)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validate(t, buildListQuery(tt.filter))
		})
	}
}
