// cmd/worker-manager/workers.go
package main

import (
	"context"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/redis/go-redis/v9"

	"ideaforge-workers/internal/common/camunda"
	"ideaforge-workers/internal/common/config"
	"ideaforge-workers/internal/common/logger"
	"ideaforge-workers/internal/common/observability"
	"ideaforge-workers/internal/models"
	"ideaforge-workers/internal/repository"
	createidearecord "ideaforge-workers/internal/workers/idea/create-idea-record"
	evaluateidea "ideaforge-workers/internal/workers/idea/evaluate-idea"
	expressinterest "ideaforge-workers/internal/workers/idea/express-interest"
	findsimilarideas "ideaforge-workers/internal/workers/idea/find-similar-ideas"
	generateswot "ideaforge-workers/internal/workers/idea/generate-swot"
	queryideas "ideaforge-workers/internal/workers/idea/query-ideas"
	validateidea "ideaforge-workers/internal/workers/idea/validate-idea"
	sendnotification "ideaforge-workers/internal/workers/notification/send-notification"
	"ideaforge-workers/pkg/registry"
)

// ideaIndex is the search index as seen by the workers. It stays nil when
// Elasticsearch is not configured so each worker sees a nil dependency.
type ideaIndex interface {
	Index(ctx context.Context, idea models.Idea) error
	SearchCandidates(ctx context.Context, target models.Idea, size int) ([]models.Idea, error)
	Search(ctx context.Context, filter repository.ListFilter) ([]models.Idea, error)
}

// deps are the shared clients handed to the workers. Optional ones are nil
// interfaces when unavailable.
type deps struct {
	repo          repository.IdeaRepository
	notifications repository.NotificationStore
	cache         redis.Cmdable
	index         ideaIndex
	scorer        evaluateidea.Scorer
	email         sendnotification.EmailSender
	sms           sendnotification.SMSPublisher
}

// registerWorkers opens a job worker for every enabled task type.
func registerWorkers(client zbc.Client, cfg *config.Config, d deps, obs *observability.Observability, log logger.Logger) []worker.JobWorker {
	catalog := registry.Default()
	for name := range cfg.Workers {
		if _, ok := catalog.Lookup(name); !ok {
			log.Warn("configured worker has no implementation", map[string]interface{}{"taskType": name})
		}
	}

	var started []worker.JobWorker
	start := func(taskType string, handler worker.JobHandler) {
		if activity, ok := catalog.Lookup(taskType); ok {
			log.Debug("registering activity", map[string]interface{}{
				"taskType":  taskType,
				"name":      activity.DisplayName,
				"workflows": activity.Workflows,
			})
		}
		if jw := camunda.StartWorker(client, taskType, config.GetWorkerConfig(cfg, taskType), handler, obs, log); jw != nil {
			started = append(started, jw)
		}
	}

	// --- Submission ---
	{
		h := validateidea.NewHandler(validateidea.LoadConfig(), log)
		start(validateidea.TaskType, h.Handle)
	}
	{
		h := createidearecord.NewHandler(createidearecord.LoadConfig(), d.repo, d.index, log)
		start(createidearecord.TaskType, h.Handle)
	}

	// --- Analysis ---
	{
		c := evaluateidea.LoadConfig()
		c.CacheTTL = cfg.Engine.CacheTTL()
		c.RequireScorer = cfg.APIs.Scoring.Required
		if cfg.APIs.Scoring.Timeout > 0 {
			c.ScorerTimeout = config.GetDuration(cfg.APIs.Scoring.Timeout)
		}
		h := evaluateidea.NewHandler(c, d.repo, d.cache, d.scorer, d.index, log)
		start(evaluateidea.TaskType, h.Handle)
	}
	{
		c := generateswot.LoadConfig()
		c.CacheTTL = cfg.Engine.CacheTTL()
		h := generateswot.NewHandler(c, d.repo, d.cache, log)
		start(generateswot.TaskType, h.Handle)
	}
	{
		c := findsimilarideas.LoadConfig()
		c.PoolSize = cfg.Engine.CandidatePoolSize
		c.MaxResults = cfg.Engine.SimilarityMaxResults
		h := findsimilarideas.NewHandler(c, d.repo, d.index, log)
		start(findsimilarideas.TaskType, h.Handle)
	}

	// --- Marketplace ---
	{
		h := queryideas.NewHandler(queryideas.LoadConfig(), d.repo, d.index, log)
		start(queryideas.TaskType, h.Handle)
	}
	{
		h := expressinterest.NewHandler(expressinterest.LoadConfig(), d.repo, d.notifications, log)
		start(expressinterest.TaskType, h.Handle)
	}
	{
		c := sendnotification.NewConfig(cfg.Integrations.AWS, cfg.Notifications)
		h := sendnotification.NewHandler(c, d.email, d.sms, d.notifications, log)
		start(sendnotification.TaskType, h.Handle)
	}

	return started
}
