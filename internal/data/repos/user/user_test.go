package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/yungbote/aquasync-backend/internal/data/repos/testutil"
	types "github.com/yungbote/aquasync-backend/internal/domain"
	"github.com/yungbote/aquasync-backend/internal/pkg/dbctx"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.New(context.Background()).WithTx(tx)

	created, err := repo.Create(dbc, []*types.User{
		{
			ID:        uuid.New(),
			Email:     "userrepo@example.com",
			Password:  "pw",
			FirstName: "A",
			LastName:  "B",
			Role:      types.RoleUser,
			Plan:      types.PlanFree,
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("Create: expected 1 user, got %d", len(created))
	}

	gotByIDs, err := repo.GetByIDs(dbc, []uuid.UUID{created[0].ID})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(gotByIDs) != 1 || gotByIDs[0].ID != created[0].ID {
		t.Fatalf("GetByIDs: unexpected result: %+v", gotByIDs)
	}

	// Lookup normalizes case and whitespace.
	gotByEmail, err := repo.GetByEmail(dbc, "  USERREPO@example.com ")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if gotByEmail == nil || gotByEmail.ID != created[0].ID {
		t.Fatalf("GetByEmail: unexpected result: %+v", gotByEmail)
	}

	missing, err := repo.GetByEmail(dbc, "does-not-exist@example.com")
	if err != nil {
		t.Fatalf("GetByEmail (missing): %v", err)
	}
	if missing != nil {
		t.Fatalf("GetByEmail (missing): expected nil, got %+v", missing)
	}

	exists, err := repo.EmailExists(dbc, created[0].Email)
	if err != nil {
		t.Fatalf("EmailExists: %v", err)
	}
	if !exists {
		t.Fatalf("EmailExists: expected true")
	}

	exists, err = repo.EmailExists(dbc, "does-not-exist@example.com")
	if err != nil {
		t.Fatalf("EmailExists (missing): %v", err)
	}
	if exists {
		t.Fatalf("EmailExists (missing): expected false")
	}

	if err := repo.UpdateName(dbc, created[0].ID, "New", "Name"); err != nil {
		t.Fatalf("UpdateName: %v", err)
	}
	if err := repo.UpdatePlan(dbc, created[0].ID, types.PlanPremium); err != nil {
		t.Fatalf("UpdatePlan: %v", err)
	}
	if err := repo.SetOnboardingDone(dbc, created[0].ID); err != nil {
		t.Fatalf("SetOnboardingDone: %v", err)
	}
	if err := repo.UpdateAvatarFields(dbc, created[0].ID, "avatars/u.png", "https://cdn.test/u.png"); err != nil {
		t.Fatalf("UpdateAvatarFields: %v", err)
	}

	after, err := repo.GetByIDs(dbc, []uuid.UUID{created[0].ID})
	if err != nil {
		t.Fatalf("GetByIDs (after updates): %v", err)
	}
	if len(after) != 1 {
		t.Fatalf("GetByIDs (after updates): expected 1 user, got %d", len(after))
	}
	u := after[0]
	if u.FirstName != "New" || u.LastName != "Name" {
		t.Fatalf("UpdateName not applied: %+v", u)
	}
	if u.Plan != types.PlanPremium {
		t.Fatalf("UpdatePlan not applied: plan=%q", u.Plan)
	}
	if !u.OnboardingDone {
		t.Fatalf("SetOnboardingDone not applied")
	}
	if u.AvatarBucketKey != "avatars/u.png" || u.AvatarURL != "https://cdn.test/u.png" {
		t.Fatalf("UpdateAvatarFields not applied: %+v", u)
	}

	listed, err := repo.List(dbc, 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listed) == 0 {
		t.Fatalf("List: expected at least 1 user")
	}
}
