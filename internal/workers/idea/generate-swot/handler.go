// internal/workers/idea/generate-swot/handler.go
package generateswot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

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
	TaskType = "generate-swot"

	cacheName   = "swot"
	cachePrefix = "idea:swot:"
)

var (
	ErrInvalidInput        = errors.New("IDEA_SCHEMA_INVALID")
	ErrIdeaNotFound        = errors.New("IDEA_NOT_FOUND")
	ErrDatabaseQueryFailed = errors.New("DATABASE_QUERY_FAILED")
)

type Handler struct {
	config       *Config
	repo         repository.IdeaRepository
	cache        redis.Cmdable
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

// NewHandler wires the worker. repo is only needed for ideaId lookups and
// cache may be nil.
func NewHandler(config *Config, repo repository.IdeaRepository, cache redis.Cmdable, log logger.Logger) *Handler {
	return &Handler{
		config:       config,
		repo:         repo,
		cache:        cache,
		errorHandler: apperrors.NewErrorHandler(log),
		logger:       log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		h.failJob(client, job, toStandardError(err))
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	idea, err := h.resolve(ctx, input)
	if err != nil {
		return nil, err
	}

	swot, cached := h.generate(ctx, idea)

	h.logger.Info("swot generated", map[string]interface{}{
		"ideaId":        idea.ID,
		"strengths":     len(swot.Strengths),
		"weaknesses":    len(swot.Weaknesses),
		"opportunities": len(swot.Opportunities),
		"threats":       len(swot.Threats),
		"cached":        cached,
	})

	return &Output{
		Strengths:     swot.Strengths,
		Weaknesses:    swot.Weaknesses,
		Opportunities: swot.Opportunities,
		Threats:       swot.Threats,
		Cached:        cached,
	}, nil
}

func (h *Handler) resolve(ctx context.Context, input *Input) (models.Idea, error) {
	if input.Idea != nil {
		return *input.Idea, nil
	}
	if input.IdeaID == "" {
		return models.Idea{}, fmt.Errorf("%w: idea or ideaId is required", ErrInvalidInput)
	}
	if h.repo == nil {
		return models.Idea{}, fmt.Errorf("%w: no repository configured", ErrDatabaseQueryFailed)
	}

	idea, err := h.repo.Get(ctx, input.IdeaID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Idea{}, fmt.Errorf("%w: %s", ErrIdeaNotFound, input.IdeaID)
	}
	if err != nil {
		return models.Idea{}, fmt.Errorf("%w: load idea: %v", ErrDatabaseQueryFailed, err)
	}
	return *idea, nil
}

func (h *Handler) generate(ctx context.Context, idea models.Idea) (engine.SWOTAnalysis, bool) {
	if h.cache == nil {
		return engine.GenerateSWOT(idea), false
	}

	key := cachePrefix + idea.ContentHash()
	var swot engine.SWOTAnalysis
	found, err := database.GetJSON(ctx, h.cache, key, &swot)
	if err != nil {
		h.logger.Warn("swot cache read failed", map[string]interface{}{"error": err.Error()})
	}
	metrics.CacheResult(cacheName, found)
	if found {
		return swot, true
	}

	swot = engine.GenerateSWOT(idea)
	if err := database.SetJSON(ctx, h.cache, key, swot, h.config.CacheTTL); err != nil {
		h.logger.Warn("swot cache write failed", map[string]interface{}{"error": err.Error()})
	}
	return swot, false
}

func toStandardError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return apperrors.NewIdeaSchemaInvalidError(err.Error())
	case errors.Is(err, ErrIdeaNotFound):
		return apperrors.NewIdeaNotFoundError(err.Error())
	case errors.Is(err, ErrDatabaseQueryFailed):
		return apperrors.NewDatabaseQueryFailedError("generate swot", err)
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
