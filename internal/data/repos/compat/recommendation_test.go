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

func TestRecommendationRepoUpsert(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewRecommendationRepo(db, testutil.Logger(t))
	dbc := dbctx.New(context.Background()).WithTx(tx)

	now := time.Now().UTC()
	if err := repo.UpsertBatch(dbc, []types.TankmateRecommendation{
		{
			SpeciesName:     "Neon Tetra",
			CompatibleWith:  datatypes.JSON([]byte(`["Corydoras","Guppy"]`)),
			CompatibleCount: 2,
			ComputedAt:      now,
		},
		{
			SpeciesName:     "Betta",
			CompatibleWith:  datatypes.JSON([]byte("[]")),
			CompatibleCount: 0,
			ComputedAt:      now,
		},
	}); err != nil {
		t.Fatalf("UpsertBatch: %v", err)
	}

	count, err := repo.CountAll(dbc)
	if err != nil {
		t.Fatalf("CountAll: %v", err)
	}
	if count != 2 {
		t.Fatalf("CountAll: expected 2, got %d", count)
	}

	if err := repo.UpsertOne(dbc, &types.TankmateRecommendation{
		SpeciesName:     "Neon Tetra",
		CompatibleWith:  datatypes.JSON([]byte(`["Corydoras"]`)),
		CompatibleCount: 1,
		ComputedAt:      now.Add(time.Minute),
	}); err != nil {
		t.Fatalf("UpsertOne: %v", err)
	}

	count, err = repo.CountAll(dbc)
	if err != nil {
		t.Fatalf("CountAll (rerun): %v", err)
	}
	if count != 2 {
		t.Fatalf("CountAll (rerun): expected 2, got %d", count)
	}

	tetra, err := repo.GetBySpeciesName(dbc, "Neon Tetra")
	if err != nil {
		t.Fatalf("GetBySpeciesName: %v", err)
	}
	if tetra == nil || tetra.CompatibleCount != 1 {
		t.Fatalf("GetBySpeciesName: rerun values not applied: %+v", tetra)
	}

	// Zero compatible partners still gets a row; only uncovered species miss.
	betta, err := repo.GetBySpeciesName(dbc, "Betta")
	if err != nil {
		t.Fatalf("GetBySpeciesName (betta): %v", err)
	}
	if betta == nil || betta.CompatibleCount != 0 {
		t.Fatalf("GetBySpeciesName (betta): expected zero-count row, got %+v", betta)
	}

	missing, err := repo.GetBySpeciesName(dbc, "Oscar")
	if err != nil {
		t.Fatalf("GetBySpeciesName (missing): %v", err)
	}
	if missing != nil {
		t.Fatalf("GetBySpeciesName (missing): expected nil, got %+v", missing)
	}

	all, err := repo.ListAll(dbc)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 2 || all[0].SpeciesName != "Betta" {
		t.Fatalf("ListAll: expected name ASC order, got %+v", all)
	}

	pruned, err := repo.PruneNotIn(dbc, []string{"Neon Tetra"})
	if err != nil {
		t.Fatalf("PruneNotIn: %v", err)
	}
	if pruned != 1 {
		t.Fatalf("PruneNotIn: expected 1 row, got %d", pruned)
	}
}
