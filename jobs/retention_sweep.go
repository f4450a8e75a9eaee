package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// RetentionStore is one prunable data set.
type RetentionStore interface {
	Cleanup(ctx context.Context, olderThan time.Duration) error
}

// SessionSweeper clears expired login sessions.
type SessionSweeper interface {
	CleanupSessions(ctx context.Context) error
}

// RetentionSweepJob prunes idempotency keys, read notifications, audit
// entries and expired sessions past the retention horizon.
type RetentionSweepJob struct {
	stores   map[string]RetentionStore
	sessions SessionSweeper
	horizon  time.Duration
	logger   *slog.Logger
}

// RetentionSweepConfig collects the prunable stores.
type RetentionSweepConfig struct {
	Idempotency   RetentionStore
	Notifications RetentionStore
	AuditLog      RetentionStore
	Sessions      SessionSweeper
	Horizon       time.Duration
	Logger        *slog.Logger
}

// NewRetentionSweepJob constructs the sweep job.
func NewRetentionSweepJob(cfg RetentionSweepConfig) *RetentionSweepJob {
	stores := make(map[string]RetentionStore)
	if cfg.Idempotency != nil {
		stores["idempotency_keys"] = cfg.Idempotency
	}
	if cfg.Notifications != nil {
		stores["notifications"] = cfg.Notifications
	}
	if cfg.AuditLog != nil {
		stores["audit_log"] = cfg.AuditLog
	}
	return &RetentionSweepJob{
		stores:   stores,
		sessions: cfg.Sessions,
		horizon:  cfg.Horizon,
		logger:   cfg.Logger,
	}
}

// Handle processes TaskRetentionSweep tasks. Each store is swept
// independently so one failure does not block the others.
func (j *RetentionSweepJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload RetentionSweepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	horizon := j.horizon
	if payload.HorizonHours > 0 {
		horizon = time.Duration(payload.HorizonHours) * time.Hour
	}
	if horizon <= 0 {
		horizon = 90 * 24 * time.Hour
	}

	var lastErr error
	for name, store := range j.stores {
		if err := store.Cleanup(ctx, horizon); err != nil {
			j.logger.Warn("retention sweep store failed",
				slog.String("store", name), slog.Any("error", err))
			lastErr = err
		}
	}
	if j.sessions != nil {
		if err := j.sessions.CleanupSessions(ctx); err != nil {
			j.logger.Warn("retention sweep sessions failed", slog.Any("error", err))
			lastErr = err
		}
	}

	if lastErr != nil {
		return lastErr
	}
	j.logger.Info("retention sweep completed", slog.Duration("horizon", horizon))
	return nil
}
