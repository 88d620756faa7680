// internal/workers/idea/express-interest/handler.go
package expressinterest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	apperrors "ideaforge-workers/internal/common/errors"
	"ideaforge-workers/internal/common/logger"
	"ideaforge-workers/internal/common/metrics"
	"ideaforge-workers/internal/models"
	"ideaforge-workers/internal/repository"
)

const (
	TaskType = "express-interest"

	roleInvestor = "investor"

	notificationTitle = "New investor interest in your idea"
)

var (
	ErrInvalidInput        = errors.New("INVALID_INPUT")
	ErrAccessDenied        = errors.New("ACCESS_DENIED")
	ErrIdeaNotFound        = errors.New("IDEA_NOT_FOUND")
	ErrDuplicateInterest   = errors.New("DUPLICATE_INTEREST")
	ErrDatabaseQueryFailed = errors.New("DATABASE_QUERY_FAILED")
)

type Handler struct {
	config        *Config
	repo          repository.IdeaRepository
	notifications repository.NotificationStore
	errorHandler  *apperrors.ErrorHandler
	logger        logger.Logger
	now           func() time.Time
}

// NewHandler wires the worker. notifications may be nil, in which case the
// interest is recorded without notifying the entrepreneur.
func NewHandler(config *Config, repo repository.IdeaRepository, notifications repository.NotificationStore, log logger.Logger) *Handler {
	return &Handler{
		config:        config,
		repo:          repo,
		notifications: notifications,
		errorHandler:  apperrors.NewErrorHandler(log),
		logger:        log.WithFields(map[string]interface{}{"taskType": TaskType}),
		now:           time.Now,
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
		h.failJob(client, job, toStandardError(&input, err))
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.IdeaID == "" || input.Investor.ID == "" {
		return nil, fmt.Errorf("%w: ideaId and investor.id are required", ErrInvalidInput)
	}
	if input.Investor.Role != "" && input.Investor.Role != roleInvestor {
		return nil, fmt.Errorf("%w: role %q cannot express interest", ErrAccessDenied, input.Investor.Role)
	}

	now := h.now().UTC()
	stamp := now.Format(time.RFC3339)
	idea, err := h.repo.AppendInterest(ctx, input.IdeaID, models.Interest{
		InvestorID:   input.Investor.ID,
		InvestorName: input.Investor.Name,
		Message:      input.Message,
		Date:         stamp,
	}, stamp)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, ErrIdeaNotFound
	case errors.Is(err, repository.ErrDuplicateInterest):
		return nil, ErrDuplicateInterest
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrDatabaseQueryFailed, err)
	}

	output := &Output{
		InterestCount: len(idea.Interests),
		RecipientID:   idea.Entrepreneur.ID,
	}

	// The interest is already stored; a failed notification must not turn a
	// retry into a duplicate.
	if h.notifications != nil && output.RecipientID != "" {
		n := h.notification(idea, input, now)
		if err := h.notifications.Add(ctx, n); err != nil {
			h.logger.Warn("failed to store interest notification", map[string]interface{}{
				"ideaId":      idea.ID,
				"recipientId": output.RecipientID,
				"error":       err.Error(),
			})
		} else {
			output.NotificationID = n.ID
		}
	}

	h.logger.Info("interest recorded", map[string]interface{}{
		"ideaId":        idea.ID,
		"investorId":    input.Investor.ID,
		"interestCount": output.InterestCount,
	})
	return output, nil
}

func (h *Handler) notification(idea *models.Idea, input *Input, now time.Time) *models.Notification {
	name := input.Investor.Name
	if name == "" {
		name = "An investor"
	}
	role := input.Investor.Title
	if role == "" {
		role = "Investor"
	}
	return &models.Notification{
		ID:             uuid.New().String(),
		RecipientID:    idea.Entrepreneur.ID,
		Type:           models.NotificationInterest,
		Title:          notificationTitle,
		Message:        fmt.Sprintf("%s expressed interest in your '%s' idea", name, idea.Title),
		IdeaID:         idea.ID,
		RelatedUserID:  input.Investor.ID,
		Data:           map[string]interface{}{"investorName": input.Investor.Name, "investorRole": role},
		ActionRequired: true,
		CreatedAt:      now.Format(time.RFC3339),
	}
}

func toStandardError(input *Input, err error) error {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return apperrors.NewIdeaSchemaInvalidError(err.Error())
	case errors.Is(err, ErrAccessDenied):
		return apperrors.NewAccessDeniedError(err.Error())
	case errors.Is(err, ErrIdeaNotFound):
		return apperrors.NewIdeaNotFoundError(input.IdeaID)
	case errors.Is(err, ErrDuplicateInterest):
		return apperrors.NewDuplicateInterestError(input.IdeaID, input.Investor.ID)
	case errors.Is(err, ErrDatabaseQueryFailed):
		return apperrors.NewDatabaseQueryFailedError("record interest", err)
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
