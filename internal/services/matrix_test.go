package services

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/aquasync-backend/internal/data/repos"
	types "github.com/yungbote/aquasync-backend/internal/domain"
	"github.com/yungbote/aquasync-backend/internal/pkg/ctxutil"
	"github.com/yungbote/aquasync-backend/internal/pkg/dbctx"
	"github.com/yungbote/aquasync-backend/internal/platform/apierr"
	"github.com/yungbote/aquasync-backend/internal/platform/logger"
)

type fakeJobRunRepo struct {
	repos.JobRunRepo
	runnable        bool
	created         []*types.JobRun
	byID            map[uuid.UUID]*types.JobRun
	latestSucceeded *types.JobRun
}

func (f *fakeJobRunRepo) ExistsRunnableByType(dbc dbctx.Context, jobType string) (bool, error) {
	return f.runnable, nil
}

func (f *fakeJobRunRepo) Create(dbc dbctx.Context, jobs []*types.JobRun) ([]*types.JobRun, error) {
	f.created = append(f.created, jobs...)
	return jobs, nil
}

func (f *fakeJobRunRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.JobRun, error) {
	var out []*types.JobRun
	for _, id := range ids {
		if job, ok := f.byID[id]; ok {
			out = append(out, job)
		}
	}
	return out, nil
}

func (f *fakeJobRunRepo) GetLatestSucceededByType(dbc dbctx.Context, jobType string) (*types.JobRun, error) {
	return f.latestSucceeded, nil
}

func testMatrixService(t *testing.T, repo repos.JobRunRepo) MatrixService {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return NewMatrixService(log, repo, nil)
}

func TestMatrixTriggerConflictsWhenRunActive(t *testing.T) {
	repo := &fakeJobRunRepo{runnable: true}
	svc := testMatrixService(t, repo)

	_, err := svc.Trigger(context.Background())
	if err == nil {
		t.Fatalf("expected conflict while a run is active")
	}
	ae := apierr.From(err)
	if ae.Status != http.StatusConflict {
		t.Fatalf("status: want=%d got=%d", http.StatusConflict, ae.Status)
	}
	if ae.Code != "matrix_run_active" {
		t.Fatalf("code: want=matrix_run_active got=%q", ae.Code)
	}
	if len(repo.created) != 0 {
		t.Fatalf("no job should be created on conflict, got %d", len(repo.created))
	}
}

func TestMatrixTriggerCreatesQueuedJob(t *testing.T) {
	repo := &fakeJobRunRepo{}
	svc := testMatrixService(t, repo)

	ownerID := uuid.New()
	ctx := ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: ownerID})
	ctx = ctxutil.WithTraceData(ctx, &ctxutil.TraceData{TraceID: "trace-1", RequestID: "req-1"})

	job, err := svc.Trigger(ctx)
	if err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	if job.JobType != types.JobTypeMatrixBuild {
		t.Fatalf("job type: want=%q got=%q", types.JobTypeMatrixBuild, job.JobType)
	}
	if job.Status != types.JobStatusQueued {
		t.Fatalf("status: want=%q got=%q", types.JobStatusQueued, job.Status)
	}
	if job.OwnerUserID != ownerID {
		t.Fatalf("owner: want=%s got=%s", ownerID, job.OwnerUserID)
	}
	if len(repo.created) != 1 {
		t.Fatalf("jobs created: want=1 got=%d", len(repo.created))
	}

	var payload map[string]string
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload["trace_id"] != "trace-1" || payload["request_id"] != "req-1" {
		t.Fatalf("trace payload mismatch: %v", payload)
	}
}

func TestMatrixRunRejectsOtherJobTypes(t *testing.T) {
	other := &types.JobRun{ID: uuid.New(), JobType: types.JobTypeSpeciesCardRender}
	repo := &fakeJobRunRepo{byID: map[uuid.UUID]*types.JobRun{other.ID: other}}
	svc := testMatrixService(t, repo)

	_, err := svc.Run(context.Background(), other.ID)
	if err == nil {
		t.Fatalf("expected not found for a non-matrix job")
	}
	if ae := apierr.From(err); ae.Code != "matrix_run_not_found" {
		t.Fatalf("code: want=matrix_run_not_found got=%q", ae.Code)
	}
}

func TestMatrixLatestReportDecodesResult(t *testing.T) {
	result := []byte(`{"species_count":3,"pair_count":3,"verdicts_written":3,"level_counts":{"compatible":1,"conditional":1,"incompatible":1}}`)
	repo := &fakeJobRunRepo{
		latestSucceeded: &types.JobRun{
			ID:      uuid.New(),
			JobType: types.JobTypeMatrixBuild,
			Status:  types.JobStatusSucceeded,
			Result:  datatypes.JSON(result),
		},
	}
	svc := testMatrixService(t, repo)

	view, err := svc.LatestReport(context.Background())
	if err != nil {
		t.Fatalf("LatestReport: %v", err)
	}
	if view.Report.SpeciesCount != 3 || view.Report.PairCount != 3 {
		t.Fatalf("report counts: got %+v", view.Report)
	}
	if view.Report.LevelCounts["conditional"] != 1 {
		t.Fatalf("level counts: got %v", view.Report.LevelCounts)
	}
}

func TestMatrixLatestReportMissing(t *testing.T) {
	svc := testMatrixService(t, &fakeJobRunRepo{})

	_, err := svc.LatestReport(context.Background())
	if err == nil {
		t.Fatalf("expected not found when no run has succeeded")
	}
	if ae := apierr.From(err); ae.Code != "no_completed_run" {
		t.Fatalf("code: want=no_completed_run got=%q", ae.Code)
	}
}
