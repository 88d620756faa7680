// internal/workers/idea/evaluate-idea/handler.go
package evaluateidea

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"

	"ideaforge-workers/internal/common/database"
	apperrors "ideaforge-workers/internal/common/errors"
	"ideaforge-workers/internal/common/logger"
	"ideaforge-workers/internal/common/metrics"
	"ideaforge-workers/internal/engine"
	"ideaforge-workers/internal/models"
	"ideaforge-workers/internal/repository"
)

const (
	TaskType = "evaluate-idea"

	cacheName   = "evaluation"
	cachePrefix = "idea:eval:"
)

var (
	ErrInvalidInput        = errors.New("IDEA_SCHEMA_INVALID")
	ErrIdeaNotFound        = errors.New("IDEA_NOT_FOUND")
	ErrDatabaseQueryFailed = errors.New("DATABASE_QUERY_FAILED")
	ErrScoringTimeout      = errors.New("SCORING_TIMEOUT")
	ErrScoringFailed       = errors.New("SCORING_FAILED")
)

// Indexer refreshes the search document after a score change.
type Indexer interface {
	Index(ctx context.Context, idea models.Idea) error
}

type Handler struct {
	config       *Config
	repo         repository.IdeaRepository
	cache        redis.Cmdable
	scorer       Scorer
	indexer      Indexer
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
	now          func() time.Time
}

// NewHandler wires the worker. cache, scorer and indexer are optional.
func NewHandler(
	config *Config,
	repo repository.IdeaRepository,
	cache redis.Cmdable,
	scorer Scorer,
	indexer Indexer,
	log logger.Logger,
) *Handler {
	return &Handler{
		config:       config,
		repo:         repo,
		cache:        cache,
		scorer:       scorer,
		indexer:      indexer,
		errorHandler: apperrors.NewErrorHandler(log),
		logger:       log.WithFields(map[string]interface{}{"taskType": TaskType}),
		now:          time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, apperrors.NewIdeaSchemaInvalidError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, h.toStandardError(err))
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	stored, idea, err := h.resolve(ctx, input)
	if err != nil {
		return nil, err
	}

	result, cached := h.evaluate(ctx, idea)
	output := &Output{
		Score:       result.Score,
		Breakdown:   result.Breakdown.Values(),
		Warnings:    result.Warnings,
		Suggestions: result.Warnings,
		Source:      SourceHeuristic,
		Cached:      cached,
		EvaluatedAt: h.now().UTC().Format(time.RFC3339),
	}

	if h.scorer != nil {
		reply, err := h.consultScorer(ctx, idea)
		switch {
		case err != nil && h.config.RequireScorer:
			return nil, err
		case err != nil:
			h.logger.Warn("scorer unavailable, using heuristic result", map[string]interface{}{
				"provider": h.scorer.Name(),
				"error":    err.Error(),
			})
		default:
			applyReply(output, reply, h.scorer.Name())
		}
	}

	metrics.IdeaScores.WithLabelValues(output.Source).Observe(float64(output.Score))

	if stored != nil {
		output.PreviousScore = stored.AIScore
		if err := h.record(ctx, stored.ID, output); err != nil {
			return nil, err
		}
	}

	h.logger.Info("idea evaluated", map[string]interface{}{
		"ideaId":   input.IdeaID,
		"score":    output.Score,
		"source":   output.Source,
		"cached":   output.Cached,
		"warnings": len(output.Warnings),
	})

	return output, nil
}

// resolve returns the stored record (when ideaId is set) and the idea to score.
func (h *Handler) resolve(ctx context.Context, input *Input) (*models.Idea, models.Idea, error) {
	if input.IdeaID == "" {
		if input.Idea == nil {
			return nil, models.Idea{}, fmt.Errorf("%w: idea or ideaId is required", ErrInvalidInput)
		}
		return nil, *input.Idea, nil
	}
	if h.repo == nil {
		return nil, models.Idea{}, fmt.Errorf("%w: no repository configured", ErrDatabaseQueryFailed)
	}

	stored, err := h.repo.Get(ctx, input.IdeaID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.Idea{}, fmt.Errorf("%w: %s", ErrIdeaNotFound, input.IdeaID)
	}
	if err != nil {
		return nil, models.Idea{}, fmt.Errorf("%w: load idea: %v", ErrDatabaseQueryFailed, err)
	}
	if input.Idea != nil {
		return stored, *input.Idea, nil
	}
	return stored, *stored, nil
}

// evaluate runs the heuristic engine through the Redis cache. Cache errors
// are logged and treated as misses.
func (h *Handler) evaluate(ctx context.Context, idea models.Idea) (engine.EvaluationResult, bool) {
	if h.cache == nil {
		return engine.Evaluate(idea), false
	}

	key := cacheKey(idea)
	var result engine.EvaluationResult
	found, err := database.GetJSON(ctx, h.cache, key, &result)
	if err != nil {
		h.logger.Warn("evaluation cache read failed", map[string]interface{}{"error": err.Error()})
	}
	metrics.CacheResult(cacheName, found)
	if found {
		return result, true
	}

	result = engine.Evaluate(idea)
	if err := database.SetJSON(ctx, h.cache, key, result, h.config.CacheTTL); err != nil {
		h.logger.Warn("evaluation cache write failed", map[string]interface{}{"error": err.Error()})
	}
	return result, false
}

func (h *Handler) consultScorer(ctx context.Context, idea models.Idea) (*ScoreResult, error) {
	provider := h.scorer.Name()
	ctx, cancel := context.WithTimeout(ctx, h.config.ScorerTimeout)
	defer cancel()

	reply, err := h.scorer.Score(ctx, idea)
	switch {
	case err != nil && isTimeout(ctx, err):
		metrics.ScoringRequests.WithLabelValues(provider, "timeout").Inc()
		return nil, fmt.Errorf("%w: %s: %v", ErrScoringTimeout, provider, err)
	case err != nil:
		metrics.ScoringRequests.WithLabelValues(provider, "error").Inc()
		return nil, fmt.Errorf("%w: %s: %v", ErrScoringFailed, provider, err)
	case !reply.WellFormed():
		metrics.ScoringRequests.WithLabelValues(provider, "malformed").Inc()
		return nil, fmt.Errorf("%w: %s: %v", ErrScoringFailed, provider, ErrMalformedReply)
	}
	metrics.ScoringRequests.WithLabelValues(provider, "ok").Inc()
	return reply, nil
}

// applyReply lets a well-formed scorer reply take precedence. Subscores the
// scorer omits keep their heuristic values.
func applyReply(output *Output, reply *ScoreResult, provider string) {
	output.Score = reply.Total()
	for name, v := range reply.Subscores() {
		output.Breakdown[name] = v
	}
	if len(reply.Suggestions) > 0 {
		output.Suggestions = reply.Suggestions
	}
	output.Source = provider
}

// record stores the score atomically and reindexes the idea as stored.
func (h *Handler) record(ctx context.Context, id string, output *Output) error {
	stored, err := h.repo.RecordScore(ctx, id, models.ScoreEntry{
		Score:  output.Score,
		Source: output.Source,
		At:     output.EvaluatedAt,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrIdeaNotFound, id)
		}
		return fmt.Errorf("%w: update score: %v", ErrDatabaseQueryFailed, err)
	}

	if h.indexer != nil {
		if err := h.indexer.Index(ctx, *stored); err != nil {
			h.logger.Warn("search reindex failed", map[string]interface{}{
				"ideaId": stored.ID,
				"error":  err.Error(),
			})
		}
	}
	return nil
}

func cacheKey(idea models.Idea) string {
	return cachePrefix + idea.ContentHash()
}

func (h *Handler) toStandardError(err error) error {
	provider := ""
	if h.scorer != nil {
		provider = h.scorer.Name()
	}
	switch {
	case errors.Is(err, ErrInvalidInput):
		return apperrors.NewIdeaSchemaInvalidError(err.Error())
	case errors.Is(err, ErrIdeaNotFound):
		return apperrors.NewIdeaNotFoundError(err.Error())
	case errors.Is(err, ErrDatabaseQueryFailed):
		return apperrors.NewDatabaseQueryFailedError("evaluate idea", err)
	case errors.Is(err, ErrScoringTimeout):
		return apperrors.NewScoringTimeoutError(provider)
	case errors.Is(err, ErrScoringFailed):
		return apperrors.NewScoringFailedError(provider, err)
	default:
		return err
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	metrics.JobCompleted(TaskType)
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	d := h.errorHandler.HandleJobError(context.Background(), client, job, err)
	metrics.JobFailed(TaskType, string(d.Standard.Code))
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
