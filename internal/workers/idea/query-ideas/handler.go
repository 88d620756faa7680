// internal/workers/idea/query-ideas/handler.go
package queryideas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "ideaforge-workers/internal/common/errors"
	"ideaforge-workers/internal/common/logger"
	"ideaforge-workers/internal/common/metrics"
	"ideaforge-workers/internal/models"
	"ideaforge-workers/internal/repository"
)

const (
	TaskType = "query-ideas"
)

var (
	ErrDatabaseQueryFailed = errors.New("DATABASE_QUERY_FAILED")
)

// Searcher runs full-text listings against the search index.
type Searcher interface {
	Search(ctx context.Context, filter repository.ListFilter) ([]models.Idea, error)
}

type Handler struct {
	config       *Config
	repo         repository.IdeaRepository
	searcher     Searcher
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

// NewHandler wires the worker. searcher may be nil.
func NewHandler(config *Config, repo repository.IdeaRepository, searcher Searcher, log logger.Logger) *Handler {
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
	filter := buildFilter(input)

	ideas, source, err := h.list(ctx, filter)
	if err != nil {
		return nil, err
	}
	if ideas == nil {
		ideas = []models.Idea{}
	}

	h.logger.Info("ideas listed", map[string]interface{}{
		"count":          len(ideas),
		"source":         source,
		"sort":           filter.Sort,
		"entrepreneurId": filter.EntrepreneurID,
	})

	return &Output{Ideas: ideas, Count: len(ideas), Source: source}, nil
}

// buildFilter maps the request onto a listing. An entrepreneur's own ideas
// are listed regardless of status and visibility, newest first; the public
// listing only shows public ideas in a listed status.
func buildFilter(input *Input) repository.ListFilter {
	if input.EntrepreneurID != "" {
		return repository.ListFilter{
			EntrepreneurID: input.EntrepreneurID,
			Sort:           repository.SortRecent,
			Limit:          input.Limit,
		}
	}

	filter := repository.ListFilter{
		Visibility:   models.VisibilityPublic,
		Statuses:     models.ListedStatuses,
		MinScore:     input.MinScore,
		Search:       strings.TrimSpace(input.Search),
		FeaturedOnly: input.Featured,
		Sort:         normalizeSort(input.Sort),
		Limit:        input.Limit,
	}
	if input.Category != allFilter {
		filter.Category = input.Category
	}
	if input.Stage != allFilter {
		filter.Stage = input.Stage
	}
	return filter
}

func normalizeSort(s string) string {
	switch s {
	case repository.SortRecent, repository.SortViews, repository.SortInterests:
		return s
	default:
		return repository.SortScore
	}
}

// list sends text searches to the index when one is configured and serves
// everything else, including index failures, from the repository.
func (h *Handler) list(ctx context.Context, filter repository.ListFilter) ([]models.Idea, string, error) {
	if h.searcher != nil && filter.Search != "" {
		sctx, cancel := context.WithTimeout(ctx, h.config.SearchTimeout)
		ideas, err := h.searcher.Search(sctx, filter)
		cancel()
		if err == nil {
			return ideas, SourceSearch, nil
		}
		h.logger.Warn("index search failed, querying repository", map[string]interface{}{
			"error": err.Error(),
		})
	}

	ideas, err := h.repo.List(ctx, filter)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDatabaseQueryFailed, err)
	}
	return ideas, SourceRepository, nil
}

func toStandardError(err error) error {
	if errors.Is(err, ErrDatabaseQueryFailed) {
		return apperrors.NewDatabaseQueryFailedError("list ideas", err)
	}
	return err
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
