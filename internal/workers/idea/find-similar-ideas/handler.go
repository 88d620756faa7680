// internal/workers/idea/find-similar-ideas/handler.go
package findsimilarideas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "ideaforge-workers/internal/common/errors"
	"ideaforge-workers/internal/common/logger"
	"ideaforge-workers/internal/common/metrics"
	"ideaforge-workers/internal/engine"
	"ideaforge-workers/internal/models"
	"ideaforge-workers/internal/repository"
)

const (
	TaskType = "find-similar-ideas"
)

var (
	ErrInvalidInput        = errors.New("IDEA_SCHEMA_INVALID")
	ErrIdeaNotFound        = errors.New("IDEA_NOT_FOUND")
	ErrDatabaseQueryFailed = errors.New("DATABASE_QUERY_FAILED")
)

// CandidateSearcher loads a candidate pool from the search index.
type CandidateSearcher interface {
	SearchCandidates(ctx context.Context, target models.Idea, size int) ([]models.Idea, error)
}

type Handler struct {
	config       *Config
	repo         repository.IdeaRepository
	searcher     CandidateSearcher
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

// NewHandler wires the worker. searcher may be nil, in which case the pool
// always comes from the repository.
func NewHandler(config *Config, repo repository.IdeaRepository, searcher CandidateSearcher, log logger.Logger) *Handler {
	return &Handler{
		config:       config,
		repo:         repo,
		searcher:     searcher,
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
	target, err := h.resolve(ctx, input)
	if err != nil {
		return nil, err
	}

	pool, source, err := h.candidates(ctx, target)
	if err != nil {
		return nil, err
	}

	maxResults := input.MaxResults
	if maxResults <= 0 {
		maxResults = h.config.MaxResults
	}

	ranked := engine.FindSimilar(target, pool, maxResults)
	results := make([]SimilarIdea, 0, len(ranked))
	for _, r := range ranked {
		results = append(results, SimilarIdea{
			IdeaID:       r.IdeaID,
			Score:        r.Score,
			Label:        engine.SimilarityLabel(r.Score),
			Similarities: r.Similarities,
			Title:        r.Idea.Title,
			AuthorName:   r.Idea.Entrepreneur.DisplayName(),
			AuthorAvatar: r.Idea.Entrepreneur.AvatarURL(),
			Idea:         r.Idea,
		})
	}

	h.logger.Info("similar ideas ranked", map[string]interface{}{
		"ideaId":     target.ID,
		"poolSize":   len(pool),
		"poolSource": source,
		"matches":    len(results),
	})

	return &Output{
		Results:    results,
		PoolSize:   len(pool),
		PoolSource: source,
	}, nil
}

func (h *Handler) resolve(ctx context.Context, input *Input) (models.Idea, error) {
	if input.Idea != nil {
		target := *input.Idea
		if target.ID == "" {
			target.ID = input.IdeaID
		}
		return target, nil
	}
	if input.IdeaID == "" {
		return models.Idea{}, fmt.Errorf("%w: idea or ideaId is required", ErrInvalidInput)
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

// candidates prefers the search index and falls back to a repository scan of
// public listed ideas when the index is absent or failing.
func (h *Handler) candidates(ctx context.Context, target models.Idea) ([]models.Idea, string, error) {
	if h.searcher != nil {
		sctx, cancel := context.WithTimeout(ctx, h.config.SearchTimeout)
		pool, err := h.searcher.SearchCandidates(sctx, target, h.config.PoolSize)
		cancel()
		if err == nil {
			return pool, PoolSourceSearch, nil
		}
		h.logger.Warn("candidate search failed, scanning repository", map[string]interface{}{
			"error": err.Error(),
		})
	}

	pool, err := h.repo.List(ctx, repository.ListFilter{
		Visibility: models.VisibilityPublic,
		Statuses:   models.ListedStatuses,
		ExcludeID:  target.ID,
		Sort:       repository.SortRecent,
		Limit:      h.config.PoolSize,
		MaxLimit:   h.config.PoolSize,
	})
	if err != nil {
		return nil, "", fmt.Errorf("%w: list candidates: %v", ErrDatabaseQueryFailed, err)
	}
	return pool, PoolSourceRepository, nil
}

func toStandardError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return apperrors.NewIdeaSchemaInvalidError(err.Error())
	case errors.Is(err, ErrIdeaNotFound):
		return apperrors.NewIdeaNotFoundError(err.Error())
	case errors.Is(err, ErrDatabaseQueryFailed):
		return apperrors.NewDatabaseQueryFailedError("find similar ideas", err)
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
