package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/aquasync-backend/internal/data/repos/testutil"
	types "github.com/yungbote/aquasync-backend/internal/domain"
	"github.com/yungbote/aquasync-backend/internal/pkg/dbctx"
	"gorm.io/datatypes"
)

func TestJobRunRepoClaimOrder(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewJobRunRepo(db, testutil.Logger(t))
	dbc := dbctx.New(context.Background()).WithTx(tx)

	now := time.Now().UTC()
	ownerUserID := uuid.New()

	queued := &types.JobRun{
		ID:          uuid.New(),
		OwnerUserID: ownerUserID,
		JobType:     "test_job",
		Status:      types.JobStatusQueued,
		Stage:       "queued",
		Payload:     datatypes.JSON([]byte("{}")),
		Result:      datatypes.JSON([]byte("{}")),
		CreatedAt:   now.Add(-3 * time.Hour),
		UpdatedAt:   now.Add(-3 * time.Hour),
	}
	failed := &types.JobRun{
		ID:          uuid.New(),
		OwnerUserID: ownerUserID,
		JobType:     "test_job",
		Status:      types.JobStatusFailed,
		Stage:       "failed",
		Attempts:    1,
		LastErrorAt: testutil.PtrTime(now.Add(-2 * time.Hour)),
		Payload:     datatypes.JSON([]byte("{}")),
		Result:      datatypes.JSON([]byte("{}")),
		CreatedAt:   now.Add(-2 * time.Hour),
		UpdatedAt:   now.Add(-2 * time.Hour),
	}
	staleRunning := &types.JobRun{
		ID:          uuid.New(),
		OwnerUserID: ownerUserID,
		JobType:     "test_job",
		Status:      types.JobStatusRunning,
		Stage:       "evaluating",
		Attempts:    1,
		HeartbeatAt: testutil.PtrTime(now.Add(-10 * time.Hour)),
		Payload:     datatypes.JSON([]byte("{}")),
		Result:      datatypes.JSON([]byte("{}")),
		CreatedAt:   now.Add(-1 * time.Hour),
		UpdatedAt:   now.Add(-1 * time.Hour),
	}

	created, err := repo.Create(dbc, []*types.JobRun{queued, failed, staleRunning})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 3 {
		t.Fatalf("Create: expected 3, got %d", len(created))
	}

	if rows, err := repo.GetByIDs(dbc, []uuid.UUID{queued.ID, failed.ID, staleRunning.ID}); err != nil || len(rows) != 3 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}

	// The claim walks the runnable set in created_at ASC order: the queued row
	// first, then the retryable failure, then the run with a stale heartbeat.
	claim1, err := repo.ClaimNextRunnable(dbc, 3, 1*time.Hour, 1*time.Hour)
	if err != nil {
		t.Fatalf("ClaimNextRunnable #1: %v", err)
	}
	if claim1 == nil || claim1.ID != queued.ID {
		t.Fatalf("ClaimNextRunnable #1: expected %v got %v", queued.ID, claim1)
	}

	claim2, err := repo.ClaimNextRunnable(dbc, 3, 1*time.Hour, 1*time.Hour)
	if err != nil {
		t.Fatalf("ClaimNextRunnable #2: %v", err)
	}
	if claim2 == nil || claim2.ID != failed.ID {
		t.Fatalf("ClaimNextRunnable #2: expected %v got %v", failed.ID, claim2)
	}

	claim3, err := repo.ClaimNextRunnable(dbc, 3, 1*time.Hour, 1*time.Hour)
	if err != nil {
		t.Fatalf("ClaimNextRunnable #3: %v", err)
	}
	if claim3 == nil || claim3.ID != staleRunning.ID {
		t.Fatalf("ClaimNextRunnable #3: expected %v got %v", staleRunning.ID, claim3)
	}

	// Every runnable row is claimed now; a fresh claim must come back empty.
	claim4, err := repo.ClaimNextRunnable(dbc, 3, 1*time.Hour, 1*time.Hour)
	if err != nil {
		t.Fatalf("ClaimNextRunnable #4: %v", err)
	}
	if claim4 != nil {
		t.Fatalf("ClaimNextRunnable #4: expected nil, got %v", claim4)
	}

	// A failed run that exhausted its attempts stays unclaimed.
	if err := repo.UpdateFields(dbc, queued.ID, map[string]interface{}{
		"status":        types.JobStatusFailed,
		"attempts":      3,
		"last_error_at": now.Add(-2 * time.Hour),
	}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	claim5, err := repo.ClaimNextRunnable(dbc, 3, 1*time.Hour, 1*time.Hour)
	if err != nil {
		t.Fatalf("ClaimNextRunnable #5: %v", err)
	}
	if claim5 != nil {
		t.Fatalf("ClaimNextRunnable #5: expected nil for exhausted attempts, got %v", claim5)
	}

	if err := repo.Heartbeat(dbc, staleRunning.ID); err != nil {
		t.Fatalf("Heartbeat: %v", err)
	}
}

func TestJobRunRepoLatestAndGuards(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewJobRunRepo(db, testutil.Logger(t))
	dbc := dbctx.New(context.Background()).WithTx(tx)

	now := time.Now().UTC()
	ownerUserID := uuid.New()

	older := &types.JobRun{
		ID:          uuid.New(),
		OwnerUserID: ownerUserID,
		JobType:     types.JobTypeMatrixBuild,
		Status:      types.JobStatusSucceeded,
		Stage:       "done",
		Progress:    100,
		Payload:     datatypes.JSON([]byte("{}")),
		Result:      datatypes.JSON([]byte(`{"pairs_evaluated":3}`)),
		CreatedAt:   now.Add(-2 * time.Hour),
		UpdatedAt:   now.Add(-2 * time.Hour),
	}
	newer := &types.JobRun{
		ID:          uuid.New(),
		OwnerUserID: ownerUserID,
		JobType:     types.JobTypeMatrixBuild,
		Status:      types.JobStatusQueued,
		Stage:       "queued",
		Payload:     datatypes.JSON([]byte("{}")),
		Result:      datatypes.JSON([]byte("{}")),
		CreatedAt:   now.Add(-1 * time.Hour),
		UpdatedAt:   now.Add(-1 * time.Hour),
	}
	if _, err := repo.Create(dbc, []*types.JobRun{older, newer}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	latest, err := repo.GetLatestByType(dbc, types.JobTypeMatrixBuild)
	if err != nil {
		t.Fatalf("GetLatestByType: %v", err)
	}
	if latest == nil || latest.ID != newer.ID {
		t.Fatalf("GetLatestByType: expected %v got %v", newer.ID, latest)
	}

	// The queued run is newer but has not succeeded, so the report lookup must
	// land on the older succeeded one.
	succeeded, err := repo.GetLatestSucceededByType(dbc, types.JobTypeMatrixBuild)
	if err != nil {
		t.Fatalf("GetLatestSucceededByType: %v", err)
	}
	if succeeded == nil || succeeded.ID != older.ID {
		t.Fatalf("GetLatestSucceededByType: expected %v got %v", older.ID, succeeded)
	}

	exists, err := repo.ExistsRunnableByType(dbc, types.JobTypeMatrixBuild)
	if err != nil {
		t.Fatalf("ExistsRunnableByType: %v", err)
	}
	if !exists {
		t.Fatalf("ExistsRunnableByType: expected true while a run is queued")
	}

	exists, err = repo.ExistsRunnableByType(dbc, types.JobTypeSpeciesCardRender)
	if err != nil {
		t.Fatalf("ExistsRunnableByType (other type): %v", err)
	}
	if exists {
		t.Fatalf("ExistsRunnableByType (other type): expected false")
	}

	listed, err := repo.List(dbc, types.JobTypeMatrixBuild, "", 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listed) != 2 || listed[0].ID != newer.ID {
		t.Fatalf("List: expected newest-first pair, got %+v", listed)
	}

	listedSucceeded, err := repo.List(dbc, types.JobTypeMatrixBuild, types.JobStatusSucceeded, 10, 0)
	if err != nil {
		t.Fatalf("List (status filter): %v", err)
	}
	if len(listedSucceeded) != 1 || listedSucceeded[0].ID != older.ID {
		t.Fatalf("List (status filter): unexpected result: %+v", listedSucceeded)
	}

	// Terminal runs refuse late writes.
	ok, err := repo.UpdateFieldsUnlessStatus(dbc, older.ID,
		[]string{types.JobStatusSucceeded, types.JobStatusCanceled},
		map[string]interface{}{"message": "late"})
	if err != nil {
		t.Fatalf("UpdateFieldsUnlessStatus: %v", err)
	}
	if ok {
		t.Fatalf("UpdateFieldsUnlessStatus: expected no-op on succeeded run")
	}

	ok, err = repo.UpdateFieldsUnlessStatus(dbc, newer.ID,
		[]string{types.JobStatusSucceeded, types.JobStatusCanceled},
		map[string]interface{}{"message": "picked up"})
	if err != nil {
		t.Fatalf("UpdateFieldsUnlessStatus (queued): %v", err)
	}
	if !ok {
		t.Fatalf("UpdateFieldsUnlessStatus (queued): expected update to apply")
	}
}
