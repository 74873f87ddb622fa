package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/roleguard/internal/jobs"
)

// AuditPurger removes audit entries older than a cutoff.
type AuditPurger interface {
	Purge(ctx context.Context, olderThan time.Time) (int64, error)
}

// KeyCleaner drops stale idempotency keys alongside the audit purge.
type KeyCleaner interface {
	Cleanup(ctx context.Context, olderThan time.Duration) error
}

// AuditPurgeJob enforces the audit retention window.
type AuditPurgeJob struct {
	Audit         AuditPurger
	Keys          KeyCleaner
	RetentionDays int
	KeyRetention  time.Duration
	Logger        *slog.Logger
	Metrics       *jobmetrics.Metrics
	clock         func() time.Time
}

// NewAuditPurgeJob wires dependencies for the purge handler. keys may be nil.
func NewAuditPurgeJob(purger AuditPurger, keys KeyCleaner, retentionDays int, logger *slog.Logger, metrics *jobmetrics.Metrics) *AuditPurgeJob {
	return &AuditPurgeJob{
		Audit:         purger,
		Keys:          keys,
		RetentionDays: retentionDays,
		KeyRetention:  7 * 24 * time.Hour,
		Logger:        logger,
		Metrics:       metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes audit purge tasks.
func (j *AuditPurgeJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Audit == nil {
		return errors.New("audit purge: handler not configured")
	}
	var payload AuditPurgePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	days := j.RetentionDays
	if payload.RetentionDays > 0 {
		days = payload.RetentionDays
	}

	tracker := j.metrics().Track(TaskAuditPurge)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.Int("retention_days", days))
	if days <= 0 {
		// Retensi 0 berarti log disimpan selamanya.
		logger.Info("audit retention disabled, skipping purge")
		return nil
	}

	cutoff := j.now().AddDate(0, 0, -days)
	removed, err := j.Audit.Purge(ctx, cutoff)
	if err != nil {
		logger.Error("purge audit log", slog.Any("error", err))
		return err
	}
	j.metrics().AddPurged(removed)

	if j.Keys != nil && j.KeyRetention > 0 {
		if err := j.Keys.Cleanup(ctx, j.KeyRetention); err != nil {
			logger.Warn("cleanup idempotency keys", slog.Any("error", err))
		}
	}

	logger.Info("completed audit purge", slog.Int64("removed", removed), slog.Time("cutoff", cutoff))
	return nil
}

func (j *AuditPurgeJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskAuditPurge))
	}
	return slog.Default().With(slog.String("job", TaskAuditPurge))
}

func (j *AuditPurgeJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *AuditPurgeJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
