package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/aquasync-backend/internal/data/repos"
	types "github.com/yungbote/aquasync-backend/internal/domain"
	"github.com/yungbote/aquasync-backend/internal/pkg/ctxutil"
	"github.com/yungbote/aquasync-backend/internal/pkg/dbctx"
)

type fakeJobRunRepo struct {
	repos.JobRunRepo
	allow   bool
	updates []map[string]interface{}
}

func (f *fakeJobRunRepo) UpdateFieldsUnlessStatus(dbc dbctx.Context, id uuid.UUID, disallowed []string, updates map[string]interface{}) (bool, error) {
	f.updates = append(f.updates, updates)
	return f.allow, nil
}

type fakeNotifier struct {
	progress int
	failed   int
	done     int
}

func (f *fakeNotifier) JobCreated(job *types.JobRun) {}

func (f *fakeNotifier) JobProgress(job *types.JobRun, stage string, p int, m string) {
	f.progress++
}

func (f *fakeNotifier) JobFailed(job *types.JobRun, stage string, msg string) {
	f.failed++
}

func (f *fakeNotifier) JobDone(job *types.JobRun) {
	f.done++
}

func newJob(payload string) *types.JobRun {
	j := &types.JobRun{ID: uuid.New(), JobType: types.JobTypeMatrixBuild, Status: types.JobStatusRunning}
	if payload != "" {
		j.Payload = datatypes.JSON([]byte(payload))
	}
	return j
}

func TestPayloadDecoding(t *testing.T) {
	id := uuid.New()
	job := newJob(fmt.Sprintf(`{"species_id":%q,"trace_id":"t-1","request_id":"r-1","note":42}`, id))
	c := NewContext(context.Background(), nil, job, &fakeJobRunRepo{allow: true}, nil)

	got, ok := c.PayloadUUID("species_id")
	if !ok || got != id {
		t.Fatalf("species_id: ok=%v got=%s", ok, got)
	}
	if _, ok := c.PayloadUUID("note"); ok {
		t.Fatalf("non-uuid field parsed as uuid")
	}
	if _, ok := c.PayloadUUID("absent"); ok {
		t.Fatalf("absent field parsed as uuid")
	}
	if s := c.PayloadString("trace_id"); s != "t-1" {
		t.Fatalf("trace_id: got=%q", s)
	}
	if s := c.PayloadString("absent"); s != "" {
		t.Fatalf("absent string: got=%q", s)
	}

	td := ctxutil.GetTraceData(c.Ctx)
	if td == nil || td.TraceID != "t-1" || td.RequestID != "r-1" {
		t.Fatalf("trace data: %+v", td)
	}
}

func TestMalformedPayloadReadsEmpty(t *testing.T) {
	job := newJob(`{"broken":`)
	c := NewContext(context.Background(), nil, job, &fakeJobRunRepo{allow: true}, nil)
	if len(c.Payload()) != 0 {
		t.Fatalf("payload: want empty got %v", c.Payload())
	}
}

func TestProgressPersistsAndNotifies(t *testing.T) {
	repo := &fakeJobRunRepo{allow: true}
	n := &fakeNotifier{}
	job := newJob("")
	c := NewContext(context.Background(), nil, job, repo, n)

	c.Progress("evaluating", 40, "Evaluated 10 of 25 pairs")

	if job.Stage != "evaluating" || job.Progress != 40 || job.Message != "Evaluated 10 of 25 pairs" {
		t.Fatalf("job: stage=%s progress=%d message=%q", job.Stage, job.Progress, job.Message)
	}
	if job.HeartbeatAt == nil {
		t.Fatalf("heartbeat not set")
	}
	if n.progress != 1 {
		t.Fatalf("notifications: want=1 got=%d", n.progress)
	}
	if len(repo.updates) != 1 || repo.updates[0]["stage"] != "evaluating" {
		t.Fatalf("persisted updates: %v", repo.updates)
	}
}

func TestProgressSkipsCanceledJob(t *testing.T) {
	repo := &fakeJobRunRepo{allow: false}
	n := &fakeNotifier{}
	job := newJob("")
	c := NewContext(context.Background(), nil, job, repo, n)

	c.Progress("evaluating", 40, "should not land")

	if job.Stage != "" || job.Progress != 0 {
		t.Fatalf("canceled job was mutated: stage=%s progress=%d", job.Stage, job.Progress)
	}
	if n.progress != 0 {
		t.Fatalf("canceled job emitted notifications")
	}
}

func TestFailMarksJob(t *testing.T) {
	repo := &fakeJobRunRepo{allow: true}
	n := &fakeNotifier{}
	job := newJob("")
	job.LockedAt = ptrNow()
	c := NewContext(context.Background(), nil, job, repo, n)

	c.Fail("writing", errors.New("disk full"))

	if job.Status != types.JobStatusFailed || job.Stage != "writing" {
		t.Fatalf("job: status=%s stage=%s", job.Status, job.Stage)
	}
	if job.Error != "disk full" {
		t.Fatalf("error: %q", job.Error)
	}
	if job.LockedAt != nil {
		t.Fatalf("locked_at should clear on failure")
	}
	if job.LastErrorAt == nil {
		t.Fatalf("last_error_at not set")
	}
	if n.failed != 1 {
		t.Fatalf("notifications: want=1 got=%d", n.failed)
	}
}

func TestSucceedSerializesResult(t *testing.T) {
	repo := &fakeJobRunRepo{allow: true}
	n := &fakeNotifier{}
	job := newJob("")
	c := NewContext(context.Background(), nil, job, repo, n)

	c.Succeed("done", map[string]any{"rendered": 3})

	if job.Status != types.JobStatusSucceeded || job.Progress != 100 {
		t.Fatalf("job: status=%s progress=%d", job.Status, job.Progress)
	}
	var res map[string]int
	if err := json.Unmarshal(job.Result, &res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if res["rendered"] != 3 {
		t.Fatalf("result: %v", res)
	}
	if n.done != 1 {
		t.Fatalf("notifications: want=1 got=%d", n.done)
	}
}

func ptrNow() *time.Time {
	now := time.Now()
	return &now
}
