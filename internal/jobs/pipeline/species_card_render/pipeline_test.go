package species_card_render

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/aquasync-backend/internal/data/repos"
	types "github.com/yungbote/aquasync-backend/internal/domain"
	jobrt "github.com/yungbote/aquasync-backend/internal/jobs/runtime"
	"github.com/yungbote/aquasync-backend/internal/pkg/dbctx"
	"github.com/yungbote/aquasync-backend/internal/platform/logger"
	"github.com/yungbote/aquasync-backend/internal/services"
)

type fakeSpeciesRepo struct {
	repos.SpeciesRepo
	missing []types.Species
	err     error
}

func (f *fakeSpeciesRepo) ListMissingImages(dbc dbctx.Context) ([]types.Species, error) {
	return f.missing, f.err
}

type fakeCardService struct {
	services.SpeciesCardService
	mu       sync.Mutex
	rendered []string
	failFor  map[string]error
}

func (f *fakeCardService) RenderAndUploadCard(dbc dbctx.Context, sp *types.Species) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failFor[sp.Name]; err != nil {
		return err
	}
	f.rendered = append(f.rendered, sp.Name)
	return nil
}

type fakeJobRunRepo struct {
	repos.JobRunRepo
}

func (f *fakeJobRunRepo) UpdateFieldsUnlessStatus(dbc dbctx.Context, id uuid.UUID, disallowed []string, updates map[string]interface{}) (bool, error) {
	return true, nil
}

func newTestRun(t *testing.T, sp *fakeSpeciesRepo, cards *fakeCardService) (*Pipeline, *jobrt.Context, *types.JobRun) {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	p := New(nil, log, sp, cards)
	job := &types.JobRun{ID: uuid.New(), JobType: types.JobTypeSpeciesCardRender, Status: types.JobStatusRunning}
	jc := jobrt.NewContext(context.Background(), nil, job, &fakeJobRunRepo{}, nil)
	return p, jc, job
}

type sweepResult struct {
	Total    int `json:"total"`
	Rendered int `json:"rendered"`
	Failed   int `json:"failed"`
}

func TestCardRenderSweep(t *testing.T) {
	sp := &fakeSpeciesRepo{missing: []types.Species{
		{ID: uuid.New(), Name: "Betta"},
		{ID: uuid.New(), Name: "Neon Tetra"},
		{ID: uuid.New(), Name: "Tiger Barb"},
	}}
	cards := &fakeCardService{failFor: map[string]error{"Tiger Barb": errors.New("font missing")}}
	p, jc, job := newTestRun(t, sp, cards)

	if err := p.Run(jc); err != nil {
		t.Fatalf("run: %v", err)
	}
	if job.Status != types.JobStatusSucceeded {
		t.Fatalf("status: want=succeeded got=%s (error=%q)", job.Status, job.Error)
	}

	var res sweepResult
	if err := json.Unmarshal(job.Result, &res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if res.Total != 3 || res.Rendered != 2 || res.Failed != 1 {
		t.Fatalf("result: total=%d rendered=%d failed=%d", res.Total, res.Rendered, res.Failed)
	}

	sort.Strings(cards.rendered)
	if len(cards.rendered) != 2 || cards.rendered[0] != "Betta" || cards.rendered[1] != "Neon Tetra" {
		t.Fatalf("rendered: %v", cards.rendered)
	}
}

func TestCardRenderNothingToDo(t *testing.T) {
	sp := &fakeSpeciesRepo{}
	cards := &fakeCardService{}
	p, jc, job := newTestRun(t, sp, cards)

	if err := p.Run(jc); err != nil {
		t.Fatalf("run: %v", err)
	}
	if job.Status != types.JobStatusSucceeded {
		t.Fatalf("status: want=succeeded got=%s", job.Status)
	}
	var res sweepResult
	if err := json.Unmarshal(job.Result, &res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if res.Total != 0 || res.Rendered != 0 || res.Failed != 0 {
		t.Fatalf("result: %+v", res)
	}
	if len(cards.rendered) != 0 {
		t.Fatalf("renderer should not be called, got %v", cards.rendered)
	}
}

func TestCardRenderLoadFailureFailsRun(t *testing.T) {
	sp := &fakeSpeciesRepo{err: errors.New("db unreachable")}
	cards := &fakeCardService{}
	p, jc, job := newTestRun(t, sp, cards)

	if err := p.Run(jc); err != nil {
		t.Fatalf("run: %v", err)
	}
	if job.Status != types.JobStatusFailed {
		t.Fatalf("status: want=failed got=%s", job.Status)
	}
	if job.Stage != "loading" {
		t.Fatalf("stage: want=loading got=%s", job.Stage)
	}
}
