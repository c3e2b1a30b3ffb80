package compat

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/aquasync-backend/internal/data/repos/testutil"
	types "github.com/yungbote/aquasync-backend/internal/domain"
	"github.com/yungbote/aquasync-backend/internal/pkg/dbctx"
	"gorm.io/datatypes"
)

func TestVerdictRepoUpsertIdempotent(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewVerdictRepo(db, testutil.Logger(t))
	dbc := dbctx.New(context.Background()).WithTx(tx)

	now := time.Now().UTC()
	batch := []types.CompatibilityVerdict{
		{
			SpeciesA:   "Betta",
			SpeciesB:   "Neon Tetra",
			Compatible: false,
			Level:      types.LevelIncompatible,
			Reasons:    datatypes.JSON([]byte(`["temperament"]`)),
			Score:      0.2,
			ComputedAt: now,
		},
		{
			SpeciesA:   "Corydoras",
			SpeciesB:   "Neon Tetra",
			Compatible: true,
			Level:      types.LevelCompatible,
			Reasons:    datatypes.JSON([]byte("[]")),
			Score:      0.9,
			ComputedAt: now,
		},
	}
	if err := repo.UpsertBatch(dbc, batch); err != nil {
		t.Fatalf("UpsertBatch: %v", err)
	}

	count, err := repo.CountAll(dbc)
	if err != nil {
		t.Fatalf("CountAll: %v", err)
	}
	if count != 2 {
		t.Fatalf("CountAll: expected 2, got %d", count)
	}

	// A second run over the same pairs must replace rows, not add them.
	later := now.Add(time.Minute)
	rerun := []types.CompatibilityVerdict{
		{
			SpeciesA:   "Betta",
			SpeciesB:   "Neon Tetra",
			Compatible: true,
			Level:      types.LevelConditional,
			Reasons:    datatypes.JSON([]byte("[]")),
			Conditions: datatypes.JSON([]byte(`["large tank"]`)),
			Score:      0.5,
			ComputedAt: later,
		},
	}
	if err := repo.UpsertBatch(dbc, rerun); err != nil {
		t.Fatalf("UpsertBatch (rerun): %v", err)
	}

	count, err = repo.CountAll(dbc)
	if err != nil {
		t.Fatalf("CountAll (rerun): %v", err)
	}
	if count != 2 {
		t.Fatalf("CountAll (rerun): expected 2, got %d", count)
	}

	// Lookup works with the names in either order.
	got, err := repo.GetByPair(dbc, "Neon Tetra", "Betta")
	if err != nil {
		t.Fatalf("GetByPair: %v", err)
	}
	if got == nil {
		t.Fatalf("GetByPair: expected a verdict")
	}
	if got.Level != types.LevelConditional || got.Score != 0.5 {
		t.Fatalf("GetByPair: rerun values not applied: %+v", got)
	}
	if got.SpeciesA != "Betta" || got.SpeciesB != "Neon Tetra" {
		t.Fatalf("GetByPair: row not in canonical order: %+v", got)
	}

	none, err := repo.GetByPair(dbc, "Betta", "Oscar")
	if err != nil {
		t.Fatalf("GetByPair (missing): %v", err)
	}
	if none != nil {
		t.Fatalf("GetByPair (missing): expected nil, got %+v", none)
	}
}

func TestVerdictRepoListCountPrune(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewVerdictRepo(db, testutil.Logger(t))
	ctx := context.Background()
	dbc := dbctx.New(ctx).WithTx(tx)

	testutil.SeedVerdict(t, ctx, tx, "Betta", "Neon Tetra", types.LevelIncompatible)
	testutil.SeedVerdict(t, ctx, tx, "Corydoras", "Neon Tetra", types.LevelCompatible)
	testutil.SeedVerdict(t, ctx, tx, "Guppy", "Neon Tetra", types.LevelCompatible)

	all, err := repo.ListAll(dbc)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListAll: expected 3, got %d", len(all))
	}

	forTetra, err := repo.ListForSpecies(dbc, "Neon Tetra")
	if err != nil {
		t.Fatalf("ListForSpecies: %v", err)
	}
	if len(forTetra) != 3 {
		t.Fatalf("ListForSpecies: expected 3, got %d", len(forTetra))
	}
	forBetta, err := repo.ListForSpecies(dbc, "Betta")
	if err != nil {
		t.Fatalf("ListForSpecies (betta): %v", err)
	}
	if len(forBetta) != 1 {
		t.Fatalf("ListForSpecies (betta): expected 1, got %d", len(forBetta))
	}

	byLevel, err := repo.CountByLevel(dbc)
	if err != nil {
		t.Fatalf("CountByLevel: %v", err)
	}
	if byLevel[types.LevelCompatible] != 2 || byLevel[types.LevelIncompatible] != 1 {
		t.Fatalf("CountByLevel: unexpected counts: %v", byLevel)
	}

	// Guppy left the catalog: every verdict touching it goes.
	pruned, err := repo.PruneNotIn(dbc, []string{"Betta", "Corydoras", "Neon Tetra"})
	if err != nil {
		t.Fatalf("PruneNotIn: %v", err)
	}
	if pruned != 1 {
		t.Fatalf("PruneNotIn: expected 1 row pruned, got %d", pruned)
	}

	count, err := repo.CountAll(dbc)
	if err != nil {
		t.Fatalf("CountAll: %v", err)
	}
	if count != 2 {
		t.Fatalf("CountAll: expected 2 after prune, got %d", count)
	}

	cleared, err := repo.PruneNotIn(dbc, nil)
	if err != nil {
		t.Fatalf("PruneNotIn (clear): %v", err)
	}
	if cleared != 2 {
		t.Fatalf("PruneNotIn (clear): expected 2 rows, got %d", cleared)
	}
}
