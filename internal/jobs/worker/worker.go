package worker

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/aquasync-backend/internal/data/repos"
	types "github.com/yungbote/aquasync-backend/internal/domain"
	"github.com/yungbote/aquasync-backend/internal/jobs/runtime"
	"github.com/yungbote/aquasync-backend/internal/pkg/dbctx"
	"github.com/yungbote/aquasync-backend/internal/platform/envutil"
	"github.com/yungbote/aquasync-backend/internal/platform/logger"
	"github.com/yungbote/aquasync-backend/internal/services"
)

// Claim tuning. A job is retried until maxAttempts; a failed attempt waits
// retryDelay before it is claimable again; a running job whose heartbeat is
// older than staleRunning is treated as abandoned and reclaimed.
const (
	maxAttempts  = 5
	retryDelay   = 30 * time.Second
	staleRunning = 30 * time.Minute
)

// Worker polls job_run for claimable work and dispatches each claim to the
// registered pipeline. Claims go through FOR UPDATE SKIP LOCKED, so any
// number of worker processes can share one queue without double-running.
type Worker struct {
	db       *gorm.DB
	log      *logger.Logger
	repo     repos.JobRunRepo
	registry *runtime.Registry
	notify   services.JobNotifier
}

func NewWorker(db *gorm.DB, baseLog *logger.Logger, repo repos.JobRunRepo, registry *runtime.Registry, notify services.JobNotifier) *Worker {
	return &Worker{
		db:       db,
		log:      baseLog.With("component", "JobWorker"),
		repo:     repo,
		registry: registry,
		notify:   notify,
	}
}

// Start launches the claim loops and returns immediately; loops exit when ctx
// is canceled.
func (w *Worker) Start(ctx context.Context) {
	concurrency := envutil.Int("WORKER_CONCURRENCY", 4)
	if concurrency < 1 {
		concurrency = 1
	}
	w.log.Info("starting job worker pool", "concurrency", concurrency)

	for i := 0; i < concurrency; i++ {
		go w.runLoop(ctx, i+1)
	}
}

func (w *Worker) runLoop(ctx context.Context, workerID int) {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker loop stopped", "worker_id", workerID)
			return
		case <-ticker.C:
			job, err := w.repo.ClaimNextRunnable(dbctx.New(ctx), maxAttempts, retryDelay, staleRunning)
			if err != nil {
				w.log.Warn("claim failed", "worker_id", workerID, "error", err)
				continue
			}
			if job == nil {
				continue
			}
			w.execute(ctx, workerID, job)
		}
	}
}

func (w *Worker) execute(ctx context.Context, workerID int, job *types.JobRun) {
	jc := runtime.NewContext(ctx, w.db, job, w.repo, w.notify)

	h, ok := w.registry.Get(job.JobType)
	if !ok {
		w.log.Warn("no handler registered",
			"worker_id", workerID,
			"job_type", job.JobType,
			"job_id", job.ID,
		)
		jc.Fail("dispatch", fmt.Errorf("no handler registered for job_type=%s", job.JobType))
		return
	}

	defer func() {
		if r := recover(); r != nil {
			w.log.Error("job handler panic",
				"worker_id", workerID,
				"job_id", job.ID,
				"job_type", job.JobType,
				"panic", r,
			)
			jc.Fail("panic", fmt.Errorf("panic: %v", r))
		}
	}()

	if runErr := h.Run(jc); runErr != nil {
		// Pipelines normally call jc.Fail themselves; this is the safety net.
		jc.Fail("run", runErr)
	}
}
