package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/aquasync-backend/internal/compat"
	"github.com/yungbote/aquasync-backend/internal/data/repos"
	types "github.com/yungbote/aquasync-backend/internal/domain"
	"github.com/yungbote/aquasync-backend/internal/pkg/ctxutil"
	"github.com/yungbote/aquasync-backend/internal/pkg/dbctx"
	"github.com/yungbote/aquasync-backend/internal/platform/apierr"
	"github.com/yungbote/aquasync-backend/internal/platform/logger"
)

// MatrixReportView pairs the stored report with the run that produced it.
type MatrixReportView struct {
	JobID      uuid.UUID     `json:"job_id"`
	FinishedAt time.Time     `json:"finished_at"`
	Report     compat.Report `json:"report"`
}

// MatrixService triggers and inspects compatibility matrix builds. The build
// itself runs on the worker; this side only manages job_run rows.
type MatrixService interface {
	Trigger(ctx context.Context) (*types.JobRun, error)
	Runs(ctx context.Context, status string, limit, offset int) ([]*types.JobRun, error)
	Run(ctx context.Context, id uuid.UUID) (*types.JobRun, error)
	LatestReport(ctx context.Context) (*MatrixReportView, error)
}

type matrixService struct {
	log        *logger.Logger
	jobRunRepo repos.JobRunRepo
	notifier   JobNotifier
}

func NewMatrixService(log *logger.Logger, jobRunRepo repos.JobRunRepo, notifier JobNotifier) MatrixService {
	return &matrixService{
		log:        log.With("service", "MatrixService"),
		jobRunRepo: jobRunRepo,
		notifier:   notifier,
	}
}

// Trigger enqueues a matrix build unless one is already queued or running.
// Two concurrent builds would race on the same verdict rows, so the guard is
// strict rather than best-effort.
func (ms *matrixService) Trigger(ctx context.Context) (*types.JobRun, error) {
	dbc := dbctx.New(ctx)
	active, err := ms.jobRunRepo.ExistsRunnableByType(dbc, types.JobTypeMatrixBuild)
	if err != nil {
		return nil, fmt.Errorf("failed to check active matrix runs: %w", err)
	}
	if active {
		return nil, apierr.Conflict("matrix_run_active", fmt.Errorf("a matrix build is already queued or running"))
	}

	job := &types.JobRun{
		ID:      uuid.New(),
		JobType: types.JobTypeMatrixBuild,
		Status:  types.JobStatusQueued,
		Stage:   "queued",
		Payload: tracePayload(ctx),
	}
	if rd := ctxutil.GetRequestData(ctx); rd != nil {
		job.OwnerUserID = rd.UserID
	}
	if _, err := ms.jobRunRepo.Create(dbc, []*types.JobRun{job}); err != nil {
		return nil, fmt.Errorf("failed to create matrix run: %w", err)
	}
	if ms.notifier != nil {
		ms.notifier.JobCreated(job)
	}
	ms.log.Info("matrix build queued", "job_id", job.ID)
	return job, nil
}

func (ms *matrixService) Runs(ctx context.Context, status string, limit, offset int) ([]*types.JobRun, error) {
	return ms.jobRunRepo.List(dbctx.New(ctx), types.JobTypeMatrixBuild, status, limit, offset)
}

func (ms *matrixService) Run(ctx context.Context, id uuid.UUID) (*types.JobRun, error) {
	found, err := ms.jobRunRepo.GetByIDs(dbctx.New(ctx), []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch matrix run: %w", err)
	}
	if len(found) == 0 || found[0].JobType != types.JobTypeMatrixBuild {
		return nil, apierr.NotFound("matrix_run_not_found", fmt.Errorf("matrix run %s does not exist", id))
	}
	return found[0], nil
}

func (ms *matrixService) LatestReport(ctx context.Context) (*MatrixReportView, error) {
	job, err := ms.jobRunRepo.GetLatestSucceededByType(dbctx.New(ctx), types.JobTypeMatrixBuild)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest matrix run: %w", err)
	}
	if job == nil {
		return nil, apierr.NotFound("no_completed_run", fmt.Errorf("no matrix build has succeeded yet"))
	}

	var report compat.Report
	if len(job.Result) > 0 {
		if uErr := json.Unmarshal(job.Result, &report); uErr != nil {
			return nil, fmt.Errorf("failed to decode matrix report: %w", uErr)
		}
	}
	return &MatrixReportView{
		JobID:      job.ID,
		FinishedAt: job.UpdatedAt,
		Report:     report,
	}, nil
}

// tracePayload seeds the job payload with the caller's correlation IDs so the
// worker's logs line up with the request that triggered the run.
func tracePayload(ctx context.Context) datatypes.JSON {
	payload := map[string]any{}
	if td := ctxutil.GetTraceData(ctx); td != nil {
		if td.TraceID != "" {
			payload["trace_id"] = td.TraceID
		}
		if td.RequestID != "" {
			payload["request_id"] = td.RequestID
		}
	}
	if len(payload) == 0 {
		return nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
