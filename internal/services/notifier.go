package services

import (
	"context"
	"time"

	types "github.com/yungbote/aquasync-backend/internal/domain"
	"github.com/yungbote/aquasync-backend/internal/platform/logger"
	"github.com/yungbote/aquasync-backend/internal/platform/redis"
)

// JobNotifier fans job lifecycle changes out over the Redis job-events
// channel. Every method is fire-and-forget: a dead broker degrades watchers,
// never the job itself.
type JobNotifier interface {
	JobCreated(job *types.JobRun)
	JobProgress(job *types.JobRun, stage string, progress int, message string)
	JobFailed(job *types.JobRun, stage string, errorMessage string)
	JobDone(job *types.JobRun)
}

type jobNotifier struct {
	log *logger.Logger
	bus redis.Client
}

// NewJobNotifier accepts a nil bus; the notifier then logs transitions and
// publishes nothing, which keeps single-process deployments broker-free.
func NewJobNotifier(baseLog *logger.Logger, bus redis.Client) JobNotifier {
	return &jobNotifier{
		log: baseLog.With("service", "JobNotifier"),
		bus: bus,
	}
}

func (n *jobNotifier) publish(ev redis.JobEvent) {
	if n == nil || n.bus == nil {
		return
	}
	// Publishing must never block a pipeline behind a slow broker.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := n.bus.Publish(ctx, ev); err != nil {
		n.log.Warn("job event publish failed",
			"job_id", ev.JobID,
			"job_type", ev.JobType,
			"status", ev.Status,
			"error", err,
		)
	}
}

func (n *jobNotifier) JobCreated(job *types.JobRun) {
	if n == nil || job == nil {
		return
	}
	n.publish(redis.JobEvent{
		JobID:   job.ID,
		JobType: job.JobType,
		Status:  types.JobStatusQueued,
		Stage:   job.Stage,
		At:      time.Now(),
	})
}

func (n *jobNotifier) JobProgress(job *types.JobRun, stage string, progress int, message string) {
	if n == nil || job == nil {
		return
	}
	n.publish(redis.JobEvent{
		JobID:    job.ID,
		JobType:  job.JobType,
		Status:   types.JobStatusRunning,
		Stage:    stage,
		Progress: float64(progress),
		Message:  message,
		At:       time.Now(),
	})
}

func (n *jobNotifier) JobFailed(job *types.JobRun, stage string, errorMessage string) {
	if n == nil || job == nil {
		return
	}
	n.publish(redis.JobEvent{
		JobID:   job.ID,
		JobType: job.JobType,
		Status:  types.JobStatusFailed,
		Stage:   stage,
		Error:   errorMessage,
		At:      time.Now(),
	})
}

func (n *jobNotifier) JobDone(job *types.JobRun) {
	if n == nil || job == nil {
		return
	}
	n.publish(redis.JobEvent{
		JobID:    job.ID,
		JobType:  job.JobType,
		Status:   types.JobStatusSucceeded,
		Stage:    job.Stage,
		Progress: 100,
		At:       time.Now(),
	})
}
