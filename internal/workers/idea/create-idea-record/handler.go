// internal/workers/idea/create-idea-record/handler.go
package createidearecord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	apperrors "ideaforge-workers/internal/common/errors"
	"ideaforge-workers/internal/common/logger"
	"ideaforge-workers/internal/common/metrics"
	"ideaforge-workers/internal/common/validation"
	"ideaforge-workers/internal/models"
	"ideaforge-workers/internal/repository"
)

const (
	TaskType = "create-idea-record"

	roleEntrepreneur = "entrepreneur"
)

var (
	ErrSchemaInvalid        = errors.New("IDEA_SCHEMA_INVALID")
	ErrAccessDenied         = errors.New("ACCESS_DENIED")
	ErrDatabaseInsertFailed = errors.New("DATABASE_INSERT_FAILED")
)

// Indexer makes a stored idea searchable.
type Indexer interface {
	Index(ctx context.Context, idea models.Idea) error
}

type Handler struct {
	config       *Config
	repo         repository.IdeaRepository
	indexer      Indexer
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
	now          func() time.Time
}

// NewHandler wires the worker. indexer may be nil when search is not configured.
func NewHandler(config *Config, repo repository.IdeaRepository, indexer Indexer, log logger.Logger) *Handler {
	return &Handler{
		config:       config,
		repo:         repo,
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
		h.failJob(client, job, toStandardError(err))
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Entrepreneur.Role != "" && input.Entrepreneur.Role != roleEntrepreneur {
		return nil, fmt.Errorf("%w: role %q cannot submit ideas", ErrAccessDenied, input.Entrepreneur.Role)
	}

	idea := input.Idea
	if idea.Visibility == "" {
		idea.Visibility = models.VisibilityPublic
	}

	if issues, err := checkSchema(idea); err != nil {
		return nil, err
	} else if len(issues) > 0 {
		return nil, &schemaError{issues: issues}
	}

	now := h.now().UTC().Format(time.RFC3339)
	idea.ID = uuid.New().String()
	idea.Entrepreneur = authorRef(input.Entrepreneur, input.DemoMode)
	idea.Status = models.StatusPending
	idea.AIScore = nil
	idea.ScoreHistory = nil
	idea.Interests = nil
	idea.Views = 0
	idea.Featured = false
	idea.CreatedAt = now
	idea.UpdatedAt = now

	if err := h.repo.Add(ctx, &idea); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseInsertFailed, err)
	}

	indexed := h.index(ctx, idea)

	h.logger.Info("idea record created", map[string]interface{}{
		"ideaId":         idea.ID,
		"entrepreneurId": idea.Entrepreneur.ID,
		"category":       idea.Category,
		"indexed":        indexed,
		"demo":           input.DemoMode,
	})

	return &Output{
		IdeaID:    idea.ID,
		Status:    idea.Status,
		CreatedAt: now,
		Indexed:   indexed,
		Demo:      input.DemoMode,
	}, nil
}

// index is best-effort; the record is already committed.
func (h *Handler) index(ctx context.Context, idea models.Idea) bool {
	if h.indexer == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, h.config.IndexTimeout)
	defer cancel()

	if err := h.indexer.Index(ctx, idea); err != nil {
		h.logger.Warn("search indexing failed", map[string]interface{}{
			"ideaId": idea.ID,
			"error":  err.Error(),
		})
		return false
	}
	return true
}

func checkSchema(idea models.Idea) ([]string, error) {
	doc, err := validation.ToDocument(idea)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	issues, err := validation.Validate(validation.IdeaRecordSchema(), doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	return issues, nil
}

// authorRef embeds the full profile in demo mode, where there is no user
// collection to resolve a bare reference against.
func authorRef(s Submitter, demo bool) models.AuthorRef {
	if !demo {
		return models.AuthorRef{Ref: s.ID, ID: s.ID}
	}
	return models.AuthorRef{
		ID:     s.ID,
		Name:   s.Name,
		Email:  s.Email,
		Avatar: s.Avatar,
	}
}

type schemaError struct {
	issues []string
}

func (e *schemaError) Error() string {
	return fmt.Sprintf("%s: %s", ErrSchemaInvalid, strings.Join(e.issues, "; "))
}

func (e *schemaError) Unwrap() error {
	return ErrSchemaInvalid
}

func toStandardError(err error) error {
	var se *schemaError
	switch {
	case errors.As(err, &se):
		return apperrors.NewIdeaSchemaInvalidError(strings.Join(se.issues, "; ")).
			WithMetadata("issues", se.issues)
	case errors.Is(err, ErrSchemaInvalid):
		return apperrors.NewIdeaSchemaInvalidError(err.Error())
	case errors.Is(err, ErrAccessDenied):
		return apperrors.NewAccessDeniedError(err.Error())
	case errors.Is(err, ErrDatabaseInsertFailed):
		return apperrors.NewDatabaseInsertFailedError(err)
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
