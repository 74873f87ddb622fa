package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/roleguard/internal/app"
	"github.com/odyssey-erp/roleguard/internal/platform/cache"
	"github.com/odyssey-erp/roleguard/internal/platform/db"
	"github.com/odyssey-erp/roleguard/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg).With(slog.String("component", "worker"))

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	services := app.NewServices(app.ServiceDeps{Config: cfg, Logger: logger, Pool: pool, Redis: redisClient})

	snapshotJob := jobs.NewAnalyticsSnapshotJob(services.Analytics, logger, nil)
	purgeJob := jobs.NewAuditPurgeJob(services.Audit, services.Idempotency, cfg.AuditRetentionDays, logger, nil)

	snapshotTask, err := jobs.NewAnalyticsSnapshotTask("cron")
	if err != nil {
		logger.Error("build snapshot task", slog.Any("error", err))
		os.Exit(1)
	}
	purgeTask, err := jobs.NewAuditPurgeTask(0)
	if err != nil {
		logger.Error("build purge task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskAnalyticsSnapshot, Handler: snapshotJob.Handle},
			{Type: jobs.TaskAuditPurge, Handler: purgeJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.SnapshotCron, Task: snapshotTask},
			{Spec: cfg.PurgeCron, Task: purgeTask},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := services.AnalyticsCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("analytics invalidation listener", slog.Any("error", err))
	}

	logger.Info("worker started", slog.String("snapshot_cron", cfg.SnapshotCron), slog.String("purge_cron", cfg.PurgeCron))
	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
