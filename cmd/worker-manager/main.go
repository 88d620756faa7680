// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"

	"ideaforge-workers/internal/common/aws"
	"ideaforge-workers/internal/common/camunda"
	"ideaforge-workers/internal/common/config"
	"ideaforge-workers/internal/common/database"
	"ideaforge-workers/internal/common/logger"
	"ideaforge-workers/internal/common/observability"
	"ideaforge-workers/internal/repository"
	"ideaforge-workers/internal/search"
	evaluateidea "ideaforge-workers/internal/workers/idea/evaluate-idea"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "console").Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, logger.WithService(cfg.App.Name))
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...", zap.Bool("demoMode", cfg.DemoMode))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs := observability.New(cfg.App.Name, log)
	defer obs.Shutdown()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Tracing, cfg.App.Name)
	if err != nil {
		zapLog.Warn("tracing disabled", zap.Error(err))
		shutdownTracing = func(context.Context) error { return nil }
	}

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(camunda.ClientConfigFrom(cfg.Camunda))
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	checks := map[string]readinessCheck{"zeebe": zeebe.HealthCheck}
	var d deps

	// --- Idea storage ---
	var pg *database.PostgresClient
	if cfg.DemoMode {
		d.repo = repository.NewDemoRepository()
		d.notifications = repository.NewMemoryNotificationStore()
		zapLog.Info("Demo mode: using seeded in-memory repository")
	} else {
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		if err := pg.Migrate(ctx); err != nil {
			zapLog.Fatal("postgres migration failed", zap.Error(err))
		}
		d.repo = repository.NewPostgresRepository(pg.DB)
		d.notifications = repository.NewPostgresNotificationStore(pg.DB)
		checks["postgres"] = pg.Ping
		zapLog.Info("PostgreSQL connected successfully")
	}

	// --- Redis ---
	var rc *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rc, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rc.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	d.cache = rc.Client
	checks["redis"] = rc.Ping
	zapLog.Info("Redis connected successfully")

	// --- Elasticsearch (optional) ---
	if cfg.Database.Elasticsearch.Enabled() {
		var es *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return es.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		if err := es.EnsureIndex(ctx, search.Mapping); err != nil {
			zapLog.Fatal("elasticsearch index setup failed", zap.Error(err))
		}
		d.index = search.NewIdeaIndex(es.Client, es.Index)
		checks["elasticsearch"] = func(context.Context) error { return es.Ping() }
		zapLog.Info("Elasticsearch connected successfully", zap.String("index", es.Index))
	} else {
		zapLog.Info("Elasticsearch not configured, searches use the repository")
	}

	// --- External services ---
	d.scorer, err = evaluateidea.NewScorer(cfg.APIs.Scoring)
	if err != nil {
		zapLog.Fatal("scorer setup failed", zap.Error(err))
	}

	awsClients, err := aws.NewClients(ctx, cfg.Integrations.AWS)
	if err != nil {
		zapLog.Fatal("aws clients failed", zap.Error(err))
	}
	if awsClients.SES != nil {
		d.email = awsClients.SES
	}
	if awsClients.SNS != nil {
		d.sms = awsClients.SNS
	}

	zapLog.Info("All external service clients initialized",
		zap.String("scoringProvider", cfg.APIs.Scoring.Provider),
		zap.Bool("email", d.email != nil),
		zap.Bool("sms", d.sms != nil),
	)

	// --- Workers ---
	jobWorkers := registerWorkers(zeebe.GetClient(), cfg, d, obs, log)
	zapLog.Info("Workers registered", zap.Int("count", len(jobWorkers)))

	// --- Health & Metrics Server ---
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.HTTPPort),
		Handler:           newHealthMux(checks),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	closeWorkers(jobWorkers)

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	if err := rc.Close(); err != nil {
		zapLog.Error("Error closing Redis client", zap.Error(err))
	}
	if pg != nil {
		if err := pg.Close(); err != nil {
			zapLog.Error("Error closing PostgreSQL", zap.Error(err))
		}
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		zapLog.Error("Error flushing traces", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped")
}

func closeWorkers(workers []worker.JobWorker) {
	for _, w := range workers {
		w.Close()
	}
	for _, w := range workers {
		w.AwaitClose()
	}
}
