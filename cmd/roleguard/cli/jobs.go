package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/roleguard/jobs"
)

// JobTrigger enqueues named jobs. jobs.Client satisfies it.
type JobTrigger interface {
	Trigger(ctx context.Context, name string) (*asynq.TaskInfo, error)
}

// TriggerCommand enqueues the named job and reports its task id.
func TriggerCommand(ctx context.Context, trigger JobTrigger, name string, out Output) int {
	out = out.normalize()
	if strings.TrimSpace(name) == "" {
		_, _ = fmt.Fprintf(out.Stderr, "jobs trigger: job name required (%s)\n", strings.Join(jobs.TaskNames(), ", "))
		return 2
	}
	info, err := trigger.Trigger(ctx, name)
	if err != nil {
		_, _ = fmt.Fprintf(out.Stderr, "jobs trigger: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintf(out.Stdout, "jobs trigger: enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
	return 0
}

// QueueReader reports queue statistics. jobs.Client satisfies it.
type QueueReader interface {
	InspectQueue() (jobs.QueueStats, error)
}

// StatsCommand prints the state of the default queue.
func StatsCommand(reader QueueReader, out Output) int {
	out = out.normalize()
	stats, err := reader.InspectQueue()
	if err != nil {
		_, _ = fmt.Fprintf(out.Stderr, "jobs stats: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintf(out.Stdout, "queue=%s pending=%d active=%d scheduled=%d retry=%d\n",
		stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry)
	return 0
}
