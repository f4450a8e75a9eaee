package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/telemim/telemim-ops/internal/app"
	"github.com/telemim/telemim-ops/internal/auth"
	"github.com/telemim/telemim-ops/internal/moves"
	"github.com/telemim/telemim-ops/internal/notify"
	"github.com/telemim/telemim-ops/internal/platform/db"
	"github.com/telemim/telemim-ops/internal/shared"
	"github.com/telemim/telemim-ops/jobs"
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

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	auditLogger := shared.NewAuditLogger(pool)
	idempotencyStore := shared.NewIdempotencyStore(pool)
	notifyRepo := notify.NewRepository(pool)
	notifyService := notify.NewService(notifyRepo, logger)
	authRepo := auth.NewRepository(pool)
	movesRepo := moves.NewRepository(pool)

	sweepJob := jobs.NewRetentionSweepJob(jobs.RetentionSweepConfig{
		Idempotency:   idempotencyStore,
		Notifications: notifyRepo,
		AuditLog:      auditLogger,
		Sessions:      authRepo,
		Horizon:       cfg.RetentionHorizon,
		Logger:        logger,
	})
	reminderJob := jobs.NewAssignmentReminderJob(movesRepo, notifyService, logger)

	sweepTask, err := jobs.NewRetentionSweepTask(0)
	if err != nil {
		logger.Error("build sweep task", slog.Any("error", err))
		os.Exit(1)
	}
	reminderTask, err := jobs.NewAssignmentReminderTask(1)
	if err != nil {
		logger.Error("build reminder task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskRetentionSweep, Handler: sweepJob.Handle},
			{Type: jobs.TaskAssignmentReminder, Handler: reminderJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 3 * * *", Task: sweepTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 18 * * *", Task: reminderTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
