package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/taskify/taskify-api/internal/app"
	"github.com/taskify/taskify-api/internal/config"
	"github.com/taskify/taskify-api/internal/events"
	"github.com/taskify/taskify-api/internal/jobs"
	"github.com/taskify/taskify-api/internal/platform/cache"
	"github.com/taskify/taskify-api/internal/platform/database"
	"github.com/taskify/taskify-api/internal/platform/mailer"
	"github.com/taskify/taskify-api/internal/service"
	"github.com/taskify/taskify-api/internal/service/auth"
)

// application holds the long-lived components of a running server.
type application struct {
	config *config.Config
	logger *slog.Logger

	db     *sql.DB
	redis  *redis.Client
	tokens auth.JWTService

	services app.Services
	emitter  *events.InMemoryEventEmitter
	runner   *jobs.Runner
}

func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (a *application, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	a = &application{config: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.cleanup()
		}
	}()

	if a.db, err = database.Open(ctx, cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Info("database connected",
		slog.String("driver", cfg.Database.Driver),
		slog.String("url", database.MaskURL(cfg.Database.URL)))

	if a.tokens, err = auth.NewJWTService(cfg.Auth); err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	var boardCache service.BoardCache
	if cfg.CacheEnabled() {
		if a.redis, err = cache.NewRedisClient(ctx, cfg.Redis); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		ttl := time.Duration(cfg.Redis.BoardTTLSeconds) * time.Second
		boardCache = cache.NewBoardCache(a.redis, ttl, logger)
	} else {
		logger.Info("board cache disabled")
	}

	m, err := mailer.New(cfg.Mail, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create mailer: %w", err)
	}

	stores := app.NewStores(a.db, cfg.Auth.BCryptCost)

	a.runner = jobs.NewRunner(jobs.Config{
		WorkerCount: cfg.Jobs.WorkerCount,
		QueueSize:   cfg.Jobs.QueueSize,
		JobTimeout:  jobs.DefaultConfig().JobTimeout,
	}, logger)
	a.runner.SetErrorHandler(func(job jobs.Job, err error) {
		logger.Error("background job failed",
			slog.String("job_id", job.ID().String()),
			slog.String("job_type", job.Type()),
			slog.String("error", err.Error()))
	})

	notifier := jobs.NewAssignmentNotifier(stores.Users, stores.Notifications, m, cfg.App.BaseURL, logger)
	a.emitter = events.NewInMemoryEventEmitter(logger)
	a.emitter.RegisterHandler(jobs.NewEventHandler(a.runner, notifier, logger), events.TypeTaskAssigned)

	a.services = app.NewServices(service.Deps{
		DB:        a.db,
		Stores:    stores,
		TxOptions: app.TxOptions(),
		Cache:     boardCache,
		Events:    a.emitter,
		Logger:    logger,
	}, a.tokens, nil)

	return a, nil
}

// cleanup releases connections. It is safe on a partially built application.
func (a *application) cleanup() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis client", slog.String("error", err.Error()))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close database", slog.String("error", err.Error()))
		}
	}
}
