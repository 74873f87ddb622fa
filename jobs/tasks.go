package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAnalyticsSnapshot rebuilds the precomputed analytics snapshot.
	TaskAnalyticsSnapshot = "analytics:snapshot"
	// TaskAuditPurge removes audit entries older than the retention window.
	TaskAuditPurge = "audit:purge"
)

// AnalyticsSnapshotPayload carries the trigger source for a snapshot rebuild.
type AnalyticsSnapshotPayload struct {
	Trigger string `json:"trigger"`
}

// AuditPurgePayload optionally overrides the configured retention window.
type AuditPurgePayload struct {
	RetentionDays int `json:"retention_days,omitempty"`
}

// NewAnalyticsSnapshotTask constructs the snapshot task.
func NewAnalyticsSnapshotTask(trigger string) (*asynq.Task, error) {
	if trigger == "" {
		trigger = "cron"
	}
	return newTask(TaskAnalyticsSnapshot, AnalyticsSnapshotPayload{Trigger: trigger}, 10*time.Minute)
}

// NewAuditPurgeTask constructs the purge task. A zero retention uses the
// worker's configured value.
func NewAuditPurgeTask(retentionDays int) (*asynq.Task, error) {
	if retentionDays < 0 {
		return nil, fmt.Errorf("jobs: retention days must not be negative, got %d", retentionDays)
	}
	return newTask(TaskAuditPurge, AuditPurgePayload{RetentionDays: retentionDays}, 30*time.Minute)
}

// TaskByName builds a task with default payload for manual triggering.
func TaskByName(name string) (*asynq.Task, error) {
	switch name {
	case TaskAnalyticsSnapshot:
		return NewAnalyticsSnapshotTask("manual")
	case TaskAuditPurge:
		return NewAuditPurgeTask(0)
	default:
		return nil, fmt.Errorf("jobs: unsupported job %s", name)
	}
}

// TaskNames lists every task the worker handles.
func TaskNames() []string {
	return []string{TaskAnalyticsSnapshot, TaskAuditPurge}
}

func newTask(kind string, payload any, timeout time.Duration) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(kind, data,
		asynq.Queue(QueueDefault),
		asynq.Timeout(timeout),
		asynq.MaxRetry(3),
	), nil
}
