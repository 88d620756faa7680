// internal/workers/idea/evaluate-idea/scorer.go
package evaluateidea

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"ideaforge-workers/internal/common/config"
	commonhttp "ideaforge-workers/internal/common/http"
	"ideaforge-workers/internal/engine"
	"ideaforge-workers/internal/models"
)

var ErrMalformedReply = errors.New("scorer reply is not a usable evaluation")

// Scorer is an external evaluator consulted after the heuristic engine.
type Scorer interface {
	Name() string
	Score(ctx context.Context, idea models.Idea) (*ScoreResult, error)
}

// ScoreResult is the reply shape every scorer produces. Breakdown values may
// be fractions or percentages; keys outside engine.SubscoreNames are ignored.
type ScoreResult struct {
	TotalScore  *float64               `json:"totalScore"`
	Breakdown   map[string]interface{} `json:"breakdown"`
	Suggestions []string               `json:"suggestions"`
}

// Subscores returns the recognised breakdown entries clamped to [0,1].
func (r *ScoreResult) Subscores() map[string]float64 {
	out := map[string]float64{}
	if r == nil {
		return out
	}
	for _, name := range engine.SubscoreNames {
		v, ok := r.Breakdown[name].(float64)
		if !ok || math.IsNaN(v) {
			continue
		}
		if v > 1 {
			v /= 100
		}
		out[name] = math.Max(0, math.Min(1, v))
	}
	return out
}

// WellFormed reports a numeric total plus at least one recognised subscore.
func (r *ScoreResult) WellFormed() bool {
	return r != nil && r.TotalScore != nil && !math.IsNaN(*r.TotalScore) && len(r.Subscores()) > 0
}

// Total is the rounded total clamped to 0..100.
func (r *ScoreResult) Total() int {
	return int(math.Max(0, math.Min(100, math.Round(*r.TotalScore))))
}

// NewScorer builds the scorer selected by cfg. An empty provider returns nil.
func NewScorer(cfg config.ScoringConfig) (Scorer, error) {
	timeout := config.GetDuration(cfg.Timeout)
	switch cfg.Provider {
	case "":
		return nil, nil
	case config.ScoringProviderHTTP:
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("http scorer requires a base url")
		}
		return NewHTTPScorer(commonhttp.NewClient(timeout, cfg.MaxRetries), cfg.BaseURL, cfg.APIKey), nil
	case config.ScoringProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("anthropic scorer requires an api key")
		}
		opts := []option.RequestOption{
			option.WithAPIKey(cfg.APIKey),
			option.WithMaxRetries(cfg.MaxRetries),
		}
		if timeout > 0 {
			opts = append(opts, option.WithRequestTimeout(timeout))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.BaseURL))
		}
		client := anthropic.NewClient(opts...)
		return NewAnthropicScorer(&client.Messages, cfg.Model), nil
	default:
		return nil, fmt.Errorf("scoring provider %q not supported", cfg.Provider)
	}
}

// ==========================
// HTTP scoring service
// ==========================

type HTTPScorer struct {
	client  *commonhttp.Client
	url     string
	headers map[string]string
}

type scoreRequest struct {
	Idea    models.Idea `json:"idea"`
	Metrics []string    `json:"metrics"`
}

func NewHTTPScorer(client *commonhttp.Client, url, apiKey string) *HTTPScorer {
	headers := map[string]string{}
	if apiKey != "" {
		headers["Authorization"] = "Bearer " + apiKey
	}
	return &HTTPScorer{client: client, url: url, headers: headers}
}

func (s *HTTPScorer) Name() string { return config.ScoringProviderHTTP }

func (s *HTTPScorer) Score(ctx context.Context, idea models.Idea) (*ScoreResult, error) {
	var out ScoreResult
	req := scoreRequest{Idea: idea, Metrics: engine.SubscoreNames}
	if err := s.client.PostJSON(ctx, s.url, s.headers, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ==========================
// Anthropic Messages API
// ==========================

type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

type AnthropicScorer struct {
	messages AnthropicMessager
	model    string
}

func NewAnthropicScorer(messages AnthropicMessager, model string) *AnthropicScorer {
	return &AnthropicScorer{messages: messages, model: model}
}

func (s *AnthropicScorer) Name() string { return config.ScoringProviderAnthropic }

const scorerSystemPrompt = "You are a startup evaluator. Judge ideas on real-world success potential and answer with a single JSON object and nothing else."

func (s *AnthropicScorer) Score(ctx context.Context, idea models.Idea) (*ScoreResult, error) {
	resp, err := s.messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(s.model),
		MaxTokens:   1024,
		System:      []anthropic.TextBlockParam{{Text: scorerSystemPrompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(idea)))},
		Temperature: anthropic.Float(0),
	})
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	raw := extractJSON(sb.String())
	if raw == "" {
		return nil, fmt.Errorf("%w: no JSON object in reply", ErrMalformedReply)
	}

	var out ScoreResult
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	return &out, nil
}

func buildPrompt(idea models.Idea) string {
	var b strings.Builder
	b.WriteString("Analyze this startup idea and give a numeric score from 0 to 100.\n")
	b.WriteString(`Return JSON strictly in this format: {"totalScore": number, "breakdown": {`)
	for i, name := range engine.SubscoreNames {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q: number", name)
	}
	b.WriteString(`}, "suggestions": [string]}` + "\n")
	b.WriteString("Breakdown values are between 0 and 1.\n\nIdea details:\n")

	fields := []struct{ label, value string }{
		{"Title", idea.Title},
		{"Tagline", idea.Tagline},
		{"Category", idea.Category},
		{"Stage", idea.Stage},
		{"Problem", idea.ProblemStatement},
		{"Proposed Solution", idea.ProposedSolution},
		{"Uniqueness", idea.Uniqueness},
		{"Target Audience", idea.TargetAudience},
		{"Market Size", idea.MarketSize},
		{"Competitors", idea.Competitors},
		{"Customer Validation", idea.CustomerValidation},
		{"Business Model", idea.BusinessModel},
		{"Team Background", idea.TeamBackground},
	}
	for _, f := range fields {
		value := strings.TrimSpace(f.value)
		if value == "" {
			value = "Not provided"
		}
		fmt.Fprintf(&b, "- %s: %s\n", f.label, value)
	}
	return b.String()
}

// extractJSON returns the outermost {...} span, tolerating prose or code
// fences around it.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

func isTimeout(ctx context.Context, err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)
}
