package compat_matrix_build

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/yungbote/aquasync-backend/internal/compat"
	"github.com/yungbote/aquasync-backend/internal/data/repos"
	types "github.com/yungbote/aquasync-backend/internal/domain"
	jobrt "github.com/yungbote/aquasync-backend/internal/jobs/runtime"
	"github.com/yungbote/aquasync-backend/internal/pkg/dbctx"
	"github.com/yungbote/aquasync-backend/internal/platform/envutil"
)

// lockTTL bounds how long a crashed run can block the next one. Extend is
// called at stage boundaries, so a healthy run never comes close.
const lockTTL = 10 * time.Minute

func (p *Pipeline) Run(jc *jobrt.Context) error {
	if jc == nil || jc.Job == nil {
		return nil
	}
	if p.scorer == nil {
		jc.Fail("validate", fmt.Errorf("no scorer configured"))
		return nil
	}

	// The queued/running guard stops duplicate enqueues; the lock stops two
	// worker processes racing over a stale-reclaimed job.
	release := func() {}
	extend := func() {}
	if p.lock != nil {
		token, won, err := p.lock.AcquireRunLock(jc.Ctx, types.JobTypeMatrixBuild, lockTTL)
		if err != nil {
			jc.Fail("lock", fmt.Errorf("acquire run lock: %w", err))
			return nil
		}
		if !won {
			jc.Fail("lock", fmt.Errorf("another matrix build holds the run lock"))
			return nil
		}
		release = func() {
			// Fresh context so a canceled run still releases promptly
			// instead of waiting out the TTL.
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := p.lock.ReleaseRunLock(ctx, types.JobTypeMatrixBuild, token); err != nil {
				p.log.Warn("run lock release failed", "error", err)
			}
		}
		extend = func() {
			if err := p.lock.ExtendRunLock(jc.Ctx, types.JobTypeMatrixBuild, token, lockTTL); err != nil {
				p.log.Warn("run lock extend failed", "error", err)
			}
		}
	}
	defer release()

	started := time.Now()
	dbc := dbctx.Context{Ctx: jc.Ctx, Tx: jc.DB}

	jc.Progress("loading", 5, "Loading species catalog")
	list, err := p.species.ListAll(dbc)
	if err != nil {
		jc.Fail("loading", fmt.Errorf("load species: %w", err))
		return nil
	}
	names := make([]string, 0, len(list))
	for i := range list {
		names = append(names, list[i].Name)
	}
	extend()

	pairs := compat.Pairs(list)
	report := compat.Report{
		SpeciesCount: len(list),
		PairCount:    len(pairs),
		LevelCounts:  map[string]int{},
		StartedAt:    started,
	}

	jc.Progress("evaluating", 10, fmt.Sprintf("Evaluating %d pairs across %d species", len(pairs), len(list)))
	verdicts := make([]compat.Verdict, 0, len(pairs))
	step := len(pairs) / 20
	if step < 1 {
		step = 1
	}
	for i, pr := range pairs {
		if jc.Ctx != nil && jc.Ctx.Err() != nil {
			jc.Fail("evaluating", jc.Ctx.Err())
			return nil
		}
		v, evalErr := p.safeEvaluate(pr.A, pr.B)
		if evalErr != nil {
			// One bad pair never sinks the run; the failure becomes an
			// incompatible verdict with the error spelled out.
			report.EvaluationErrors++
			p.log.Warn("pair evaluation failed",
				"species_a", pr.A.Name,
				"species_b", pr.B.Name,
				"error", evalErr,
			)
			v = compat.EvaluationErrorVerdict(pr.A.Name, pr.B.Name, evalErr)
		}
		verdicts = append(verdicts, compat.Normalize(v))
		if (i+1)%step == 0 || i+1 == len(pairs) {
			pct := 10 + (i+1)*45/len(pairs)
			jc.Progress("evaluating", pct, fmt.Sprintf("Evaluated %d of %d pairs", i+1, len(pairs)))
		}
	}
	for _, v := range verdicts {
		report.LevelCounts[v.Level]++
	}
	extend()

	computedAt := time.Now()
	jc.Progress("writing", 60, "Writing pair verdicts")
	rows := make([]types.CompatibilityVerdict, 0, len(verdicts))
	for _, v := range verdicts {
		rows = append(rows, verdictRow(v, computedAt))
	}
	batch := envutil.Int("MATRIX_WRITE_BATCH", 200)
	if batch < 1 {
		batch = 1
	}
	for start := 0; start < len(rows); start += batch {
		if jc.Ctx != nil && jc.Ctx.Err() != nil {
			jc.Fail("writing", jc.Ctx.Err())
			return nil
		}
		end := min(start+batch, len(rows))
		chunk := rows[start:end]
		batchErr := p.verdicts.UpsertBatch(dbc, chunk)
		if batchErr != nil && repos.IsRetryable(batchErr) {
			// Deadlocks and serialization faults get one batch retry before
			// degrading to row isolation.
			time.Sleep(200 * time.Millisecond)
			batchErr = p.verdicts.UpsertBatch(dbc, chunk)
		}
		if batchErr != nil {
			// Degrade to per-row writes so one poisoned row costs one row.
			p.log.Warn("verdict batch write failed, retrying per row",
				"batch_start", start,
				"batch_len", len(chunk),
				"error", batchErr,
			)
			for i := range chunk {
				if rowErr := p.verdicts.UpsertOne(dbc, &chunk[i]); rowErr != nil {
					report.WriteErrors++
					p.log.Warn("verdict row write failed",
						"species_a", chunk[i].SpeciesA,
						"species_b", chunk[i].SpeciesB,
						"error", rowErr,
					)
					continue
				}
				report.VerdictsWritten++
			}
		} else {
			report.VerdictsWritten += len(chunk)
		}
		jc.Progress("writing", 60+end*20/max(len(rows), 1), fmt.Sprintf("Wrote %d of %d verdicts", end, len(rows)))
	}

	if pruned, err := p.verdicts.PruneNotIn(dbc, names); err != nil {
		report.WriteErrors++
		p.log.Warn("verdict prune failed", "error", err)
	} else {
		report.PrunedVerdicts = pruned
	}
	extend()

	jc.Progress("aggregating", 85, "Updating tankmate recommendations")
	tankmates := compat.Tankmates(names, verdicts)
	recRows := make([]types.TankmateRecommendation, 0, len(names))
	for _, name := range names {
		partners := tankmates[name]
		if partners == nil {
			partners = []string{}
		}
		cw, _ := json.Marshal(partners)
		recRows = append(recRows, types.TankmateRecommendation{
			SpeciesName:     name,
			CompatibleWith:  datatypes.JSON(cw),
			CompatibleCount: len(partners),
			ComputedAt:      computedAt,
		})
	}
	for start := 0; start < len(recRows); start += batch {
		end := min(start+batch, len(recRows))
		chunk := recRows[start:end]
		batchErr := p.recs.UpsertBatch(dbc, chunk)
		if batchErr != nil && repos.IsRetryable(batchErr) {
			time.Sleep(200 * time.Millisecond)
			batchErr = p.recs.UpsertBatch(dbc, chunk)
		}
		if batchErr != nil {
			p.log.Warn("recommendation batch write failed, retrying per row",
				"batch_start", start,
				"error", batchErr,
			)
			for i := range chunk {
				if rowErr := p.recs.UpsertOne(dbc, &chunk[i]); rowErr != nil {
					report.WriteErrors++
					p.log.Warn("recommendation row write failed",
						"species", chunk[i].SpeciesName,
						"error", rowErr,
					)
				}
			}
		}
	}
	if pruned, err := p.recs.PruneNotIn(dbc, names); err != nil {
		report.WriteErrors++
		p.log.Warn("recommendation prune failed", "error", err)
	} else {
		report.PrunedRecommendations = pruned
	}

	jc.Progress("reporting", 95, "Summarizing run")
	report.MostCompatible, report.LeastCompatible = compat.Extremes(tankmates)
	report.MostCompatibleCount = len(tankmates[report.MostCompatible])
	report.LeastCompatibleCount = len(tankmates[report.LeastCompatible])
	report.FinishedAt = time.Now()
	report.DurationMS = report.FinishedAt.Sub(started).Milliseconds()

	p.log.Info("matrix build complete",
		"species", report.SpeciesCount,
		"pairs", report.PairCount,
		"verdicts_written", report.VerdictsWritten,
		"evaluation_errors", report.EvaluationErrors,
		"write_errors", report.WriteErrors,
		"pruned_verdicts", report.PrunedVerdicts,
		"duration_ms", report.DurationMS,
	)
	jc.Succeed("done", report)
	return nil
}

// safeEvaluate shields the run from scorer panics; a panicking scorer is
// reported the same way as one returning an error.
func (p *Pipeline) safeEvaluate(a, b *types.Species) (v compat.Verdict, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scorer panic: %v", r)
		}
	}()
	return p.scorer.Evaluate(a, b)
}

func verdictRow(v compat.Verdict, at time.Time) types.CompatibilityVerdict {
	reasons, _ := json.Marshal(v.Reasons)
	row := types.CompatibilityVerdict{
		SpeciesA:   v.SpeciesA,
		SpeciesB:   v.SpeciesB,
		Compatible: v.Compatible,
		Level:      v.Level,
		Reasons:    datatypes.JSON(reasons),
		Score:      v.Score,
		ComputedAt: at,
	}
	if len(v.Conditions) > 0 {
		conditions, _ := json.Marshal(v.Conditions)
		row.Conditions = datatypes.JSON(conditions)
	}
	return row
}
