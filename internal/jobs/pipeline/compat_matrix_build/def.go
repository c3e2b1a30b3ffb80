package compat_matrix_build

import (
	"gorm.io/gorm"

	"github.com/yungbote/aquasync-backend/internal/compat"
	"github.com/yungbote/aquasync-backend/internal/data/repos"
	types "github.com/yungbote/aquasync-backend/internal/domain"
	"github.com/yungbote/aquasync-backend/internal/platform/logger"
	"github.com/yungbote/aquasync-backend/internal/platform/redis"
)

// Pipeline rebuilds the full compatibility matrix: every unordered pair of
// catalog species is evaluated by the scorer, verdicts are upserted on the
// canonical pair key, per-species tankmate rollups are refreshed, and rows
// for species no longer in the catalog are pruned. The run report lands in
// job_run.result.
type Pipeline struct {
	db       *gorm.DB
	log      *logger.Logger
	species  repos.SpeciesRepo
	verdicts repos.VerdictRepo
	recs     repos.RecommendationRepo
	scorer   compat.Scorer
	lock     redis.Client
}

// New wires the pipeline. lock may be nil; the run-lock stage is skipped and
// mutual exclusion rests on the queued/running guard alone.
func New(
	db *gorm.DB,
	baseLog *logger.Logger,
	species repos.SpeciesRepo,
	verdicts repos.VerdictRepo,
	recs repos.RecommendationRepo,
	scorer compat.Scorer,
	lock redis.Client,
) *Pipeline {
	return &Pipeline{
		db:       db,
		log:      baseLog.With("job", types.JobTypeMatrixBuild),
		species:  species,
		verdicts: verdicts,
		recs:     recs,
		scorer:   scorer,
		lock:     lock,
	}
}

func (p *Pipeline) Type() string { return types.JobTypeMatrixBuild }
