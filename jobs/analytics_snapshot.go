package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/roleguard/internal/analytics"
	jobmetrics "github.com/odyssey-erp/roleguard/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// SnapshotBuilder rebuilds and stores the analytics snapshot.
type SnapshotBuilder interface {
	Precompute(ctx context.Context) (analytics.Snapshot, error)
}

// AnalyticsSnapshotJob keeps the precomputed dashboard snapshot fresh.
type AnalyticsSnapshotJob struct {
	Analytics SnapshotBuilder
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	Timeout   time.Duration
	clock     func() time.Time
}

// NewAnalyticsSnapshotJob wires dependencies for the snapshot handler.
func NewAnalyticsSnapshotJob(builder SnapshotBuilder, logger *slog.Logger, metrics *jobmetrics.Metrics) *AnalyticsSnapshotJob {
	return &AnalyticsSnapshotJob{
		Analytics: builder,
		Logger:    logger,
		Metrics:   metrics,
		Timeout:   2 * time.Minute,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes analytics snapshot tasks.
func (j *AnalyticsSnapshotJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Analytics == nil {
		return errors.New("analytics snapshot: handler not configured")
	}
	var payload AnalyticsSnapshotPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskAnalyticsSnapshot)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("trigger", payload.Trigger))
	started := j.now()
	logger.Info("starting analytics snapshot")

	runCtx := ctx
	if j.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}

	snapshot, err := j.Analytics.Precompute(runCtx)
	if err != nil {
		logger.Error("build analytics snapshot", slog.Any("error", err))
		return err
	}
	logger.Info("completed analytics snapshot",
		slog.Int("roles", snapshot.RoleCount),
		slog.Int("capabilities", len(snapshot.CapabilityUsage)),
		slog.Duration("duration", j.now().Sub(started)))
	return nil
}

func (j *AnalyticsSnapshotJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskAnalyticsSnapshot))
	}
	return slog.Default().With(slog.String("job", TaskAnalyticsSnapshot))
}

func (j *AnalyticsSnapshotJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *AnalyticsSnapshotJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
