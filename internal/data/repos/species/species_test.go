package species

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/yungbote/aquasync-backend/internal/data/repos/testutil"
	types "github.com/yungbote/aquasync-backend/internal/domain"
	"github.com/yungbote/aquasync-backend/internal/pkg/dbctx"
)

func TestSpeciesRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewSpeciesRepo(db, testutil.Logger(t))
	ctx := context.Background()
	dbc := dbctx.New(ctx).WithTx(tx)

	tetra := testutil.SeedSpecies(t, ctx, tx, "Neon Tetra")
	barb := testutil.SeedSpecies(t, ctx, tx, "Tiger Barb")
	clown := testutil.SeedSpecies(t, ctx, tx, "Clownfish")
	if err := repo.UpdateFields(dbc, clown.ID, map[string]interface{}{
		"water_type": types.WaterSaltwater,
	}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	byName, err := repo.GetByName(dbc, "  Neon Tetra ")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if byName == nil || byName.ID != tetra.ID {
		t.Fatalf("GetByName: unexpected result: %+v", byName)
	}

	missing, err := repo.GetByName(dbc, "Ghost Fish")
	if err != nil {
		t.Fatalf("GetByName (missing): %v", err)
	}
	if missing != nil {
		t.Fatalf("GetByName (missing): expected nil, got %+v", missing)
	}

	exists, err := repo.NameExists(dbc, "Tiger Barb")
	if err != nil {
		t.Fatalf("NameExists: %v", err)
	}
	if !exists {
		t.Fatalf("NameExists: expected true")
	}

	all, err := repo.ListAll(dbc)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListAll: expected 3, got %d", len(all))
	}
	// Pair enumeration depends on this ordering staying name ASC.
	if all[0].Name != "Clownfish" || all[1].Name != "Neon Tetra" || all[2].Name != "Tiger Barb" {
		t.Fatalf("ListAll: expected name ASC order, got %q %q %q", all[0].Name, all[1].Name, all[2].Name)
	}

	fresh, err := repo.List(dbc, types.WaterFreshwater, 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(fresh) != 2 {
		t.Fatalf("List: expected 2 freshwater species, got %d", len(fresh))
	}

	count, err := repo.CountAll(dbc)
	if err != nil {
		t.Fatalf("CountAll: %v", err)
	}
	if count != 3 {
		t.Fatalf("CountAll: expected 3, got %d", count)
	}

	if err := repo.UpdateImageFields(dbc, barb.ID, "species/barb.jpg", "https://cdn.test/barb.jpg"); err != nil {
		t.Fatalf("UpdateImageFields: %v", err)
	}
	if err := repo.UpdateCardFields(dbc, tetra.ID, "#1f6feb", "cards/tetra.png", "https://cdn.test/tetra.png"); err != nil {
		t.Fatalf("UpdateCardFields: %v", err)
	}

	got, err := repo.GetByIDs(dbc, []uuid.UUID{tetra.ID, barb.ID})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("GetByIDs: expected 2, got %d", len(got))
	}
	for _, sp := range got {
		switch sp.ID {
		case tetra.ID:
			if sp.CardColor != "#1f6feb" || sp.CardBucketKey != "cards/tetra.png" {
				t.Fatalf("UpdateCardFields not applied: %+v", sp)
			}
		case barb.ID:
			if sp.ImageBucketKey != "species/barb.jpg" || sp.ImageURL != "https://cdn.test/barb.jpg" {
				t.Fatalf("UpdateImageFields not applied: %+v", sp)
			}
		}
	}

	// Barb has a photo now; the render sweep should only see the others.
	noImage, err := repo.ListMissingImages(dbc)
	if err != nil {
		t.Fatalf("ListMissingImages: %v", err)
	}
	if len(noImage) != 2 {
		t.Fatalf("ListMissingImages: expected 2, got %d", len(noImage))
	}
	for _, sp := range noImage {
		if sp.ID == barb.ID {
			t.Fatalf("ListMissingImages: barb has an image and should be excluded")
		}
	}

	if err := repo.SoftDelete(dbc, clown.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	afterDelete, err := repo.ListAll(dbc)
	if err != nil {
		t.Fatalf("ListAll (after delete): %v", err)
	}
	if len(afterDelete) != 2 {
		t.Fatalf("ListAll (after delete): expected 2, got %d", len(afterDelete))
	}
	existsDeleted, err := repo.NameExists(dbc, "Clownfish")
	if err != nil {
		t.Fatalf("NameExists (deleted): %v", err)
	}
	if existsDeleted {
		t.Fatalf("NameExists (deleted): soft-deleted species should not count")
	}
}
