// internal/workers/idea/evaluate-idea/scorer_test.go
package evaluateidea

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideaforge-workers/internal/common/config"
	commonhttp "ideaforge-workers/internal/common/http"
	"ideaforge-workers/internal/engine"
	"ideaforge-workers/internal/models"
)

// mockMessager implements AnthropicMessager for testing.
type mockMessager struct {
	response *anthropic.Message
	err      error
	params   anthropic.MessageNewParams
}

func (m *mockMessager) New(_ context.Context, params anthropic.MessageNewParams, _ ...option.RequestOption) (*anthropic.Message, error) {
	m.params = params
	return m.response, m.err
}

func newMockMessage(text string) *anthropic.Message {
	return &anthropic.Message{
		Content: []anthropic.ContentBlockUnion{
			{Type: "text", Text: text},
		},
	}
}

func floatPtr(v float64) *float64 { return &v }

func TestScoreResult_Subscores(t *testing.T) {
	r := &ScoreResult{
		TotalScore: floatPtr(71),
		Breakdown: map[string]interface{}{
			engine.Clarity:       0.8,
			engine.Traction:      65.0,
			engine.Feasibility:   -2.0,
			engine.BusinessModel: "high",
			"team":               0.9,
		},
	}

	subs := r.Subscores()
	assert.Equal(t, map[string]float64{
		engine.Clarity:     0.8,
		engine.Traction:    0.65,
		engine.Feasibility: 0,
	}, subs)
	assert.True(t, r.WellFormed())
	assert.Equal(t, 71, r.Total())
}

func TestScoreResult_WellFormed(t *testing.T) {
	tests := []struct {
		name string
		r    *ScoreResult
		want bool
	}{
		{name: "nil", r: nil, want: false},
		{name: "missing total", r: &ScoreResult{Breakdown: map[string]interface{}{engine.Clarity: 0.5}}, want: false},
		{name: "only unknown keys", r: &ScoreResult{TotalScore: floatPtr(50), Breakdown: map[string]interface{}{"problem": 10.0}}, want: false},
		{name: "one known key", r: &ScoreResult{TotalScore: floatPtr(50), Breakdown: map[string]interface{}{engine.Traction: 0.1}}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.r.WellFormed())
		})
	}
}

func TestScoreResult_TotalClamps(t *testing.T) {
	assert.Equal(t, 100, (&ScoreResult{TotalScore: floatPtr(140.2)}).Total())
	assert.Equal(t, 0, (&ScoreResult{TotalScore: floatPtr(-3)}).Total())
	assert.Equal(t, 67, (&ScoreResult{TotalScore: floatPtr(66.5)}).Total())
}

func TestHTTPScorer_Score(t *testing.T) {
	var gotAuth string
	var gotBody scoreRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"totalScore": 88.6, "breakdown": {"clarity": 90, "bogus": 1}, "suggestions": ["Name a pilot customer."]}`))
	}))
	defer server.Close()

	scorer := NewHTTPScorer(commonhttp.NewClient(time.Second, 0), server.URL, "secret")
	reply, err := scorer.Score(context.Background(), models.Idea{Title: "Tool Library"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "Tool Library", gotBody.Idea.Title)
	assert.Equal(t, engine.SubscoreNames, gotBody.Metrics)
	assert.True(t, reply.WellFormed())
	assert.Equal(t, 89, reply.Total())
	assert.Equal(t, []string{"Name a pilot customer."}, reply.Suggestions)
}

func TestHTTPScorer_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	scorer := NewHTTPScorer(commonhttp.NewClient(time.Second, 2), server.URL, "")
	_, err := scorer.Score(context.Background(), models.Idea{})

	var statusErr *commonhttp.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
}

func TestAnthropicScorer_Score(t *testing.T) {
	mock := &mockMessager{response: newMockMessage("Here is my evaluation:\n```json\n" +
		`{"totalScore": 74, "breakdown": {"traction": 0.4, "clarity": 0.9}, "suggestions": ["Quantify the waitlist."]}` +
		"\n```")}
	scorer := NewAnthropicScorer(mock, "claude-test")

	reply, err := scorer.Score(context.Background(), models.Idea{Title: "Tool Library", MarketSize: "Large (> $10B)"})
	require.NoError(t, err)

	assert.Equal(t, anthropic.Model("claude-test"), mock.params.Model)
	assert.Equal(t, int64(1024), mock.params.MaxTokens)
	require.Len(t, mock.params.Messages, 1)
	assert.Equal(t, 74, reply.Total())
	assert.Equal(t, map[string]float64{engine.Traction: 0.4, engine.Clarity: 0.9}, reply.Subscores())
}

func TestAnthropicScorer_Errors(t *testing.T) {
	t.Run("transport error", func(t *testing.T) {
		scorer := NewAnthropicScorer(&mockMessager{err: errors.New("overloaded")}, "m")
		_, err := scorer.Score(context.Background(), models.Idea{})
		assert.EqualError(t, err, "overloaded")
	})

	t.Run("no json in reply", func(t *testing.T) {
		scorer := NewAnthropicScorer(&mockMessager{response: newMockMessage("I cannot score this.")}, "m")
		_, err := scorer.Score(context.Background(), models.Idea{})
		assert.True(t, errors.Is(err, ErrMalformedReply))
	})

	t.Run("empty content", func(t *testing.T) {
		scorer := NewAnthropicScorer(&mockMessager{response: &anthropic.Message{Content: []anthropic.ContentBlockUnion{}}}, "m")
		_, err := scorer.Score(context.Background(), models.Idea{})
		assert.True(t, errors.Is(err, ErrMalformedReply))
	})
}

func TestBuildPrompt(t *testing.T) {
	prompt := buildPrompt(models.Idea{Title: "Tool Library", TeamBackground: "  "})

	assert.Contains(t, prompt, "- Title: Tool Library")
	assert.Contains(t, prompt, "- Team Background: Not provided")
	for _, name := range engine.SubscoreNames {
		assert.Contains(t, prompt, `"`+name+`": number`)
	}
}

func TestNewScorer(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.ScoringConfig
		wantName string
		wantNil  bool
		wantErr  string
	}{
		{name: "disabled", cfg: config.ScoringConfig{}, wantNil: true},
		{name: "http", cfg: config.ScoringConfig{Provider: "http", BaseURL: "http://scorer.local/score"}, wantName: "http"},
		{name: "http without url", cfg: config.ScoringConfig{Provider: "http"}, wantErr: "base url"},
		{name: "anthropic", cfg: config.ScoringConfig{Provider: "anthropic", APIKey: "k", Model: "m", Timeout: 1000}, wantName: "anthropic"},
		{name: "anthropic without key", cfg: config.ScoringConfig{Provider: "anthropic"}, wantErr: "api key"},
		{name: "unknown", cfg: config.ScoringConfig{Provider: "oracle"}, wantErr: "not supported"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer, err := NewScorer(tt.cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, scorer)
				return
			}
			assert.Equal(t, tt.wantName, scorer.Name())
		})
	}
}
