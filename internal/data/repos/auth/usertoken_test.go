package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/aquasync-backend/internal/data/repos/testutil"
	types "github.com/yungbote/aquasync-backend/internal/domain"
	"github.com/yungbote/aquasync-backend/internal/pkg/dbctx"
)

func TestUserTokenRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserTokenRepo(db, testutil.Logger(t))
	ctx := context.Background()
	dbc := dbctx.New(ctx).WithTx(tx)

	u := testutil.SeedUser(t, ctx, tx, "usertoken@example.com")

	created, err := repo.Create(dbc, []*types.UserToken{
		{
			ID:               uuid.New(),
			UserID:           u.ID,
			AccessToken:      "access-1",
			RefreshToken:     "refresh-1",
			RefreshExpiresAt: time.Now().Add(time.Hour),
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("Create: expected 1 token, got %d", len(created))
	}

	byAccess, err := repo.GetByAccessToken(dbc, "access-1")
	if err != nil {
		t.Fatalf("GetByAccessToken: %v", err)
	}
	if byAccess == nil || byAccess.ID != created[0].ID {
		t.Fatalf("GetByAccessToken: unexpected result: %+v", byAccess)
	}

	byRefresh, err := repo.GetByRefreshToken(dbc, "refresh-1")
	if err != nil {
		t.Fatalf("GetByRefreshToken: %v", err)
	}
	if byRefresh == nil || byRefresh.ID != created[0].ID {
		t.Fatalf("GetByRefreshToken: unexpected result: %+v", byRefresh)
	}

	missing, err := repo.GetByAccessToken(dbc, "nope")
	if err != nil {
		t.Fatalf("GetByAccessToken (missing): %v", err)
	}
	if missing != nil {
		t.Fatalf("GetByAccessToken (missing): expected nil, got %+v", missing)
	}

	byUser, err := repo.GetByUserIDs(dbc, []uuid.UUID{u.ID})
	if err != nil {
		t.Fatalf("GetByUserIDs: %v", err)
	}
	if len(byUser) != 1 {
		t.Fatalf("GetByUserIDs: expected 1 token, got %d", len(byUser))
	}

	if err := repo.SoftDeleteByUserIDs(dbc, []uuid.UUID{u.ID}); err != nil {
		t.Fatalf("SoftDeleteByUserIDs: %v", err)
	}
	gone, err := repo.GetByAccessToken(dbc, "access-1")
	if err != nil {
		t.Fatalf("GetByAccessToken (after delete): %v", err)
	}
	if gone != nil {
		t.Fatalf("GetByAccessToken (after delete): expected nil, got %+v", gone)
	}
}

func TestUserTokenRepoDeleteExpired(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserTokenRepo(db, testutil.Logger(t))
	ctx := context.Background()
	dbc := dbctx.New(ctx).WithTx(tx)

	u := testutil.SeedUser(t, ctx, tx, "usertoken-expired@example.com")

	_, err := repo.Create(dbc, []*types.UserToken{
		{
			ID:               uuid.New(),
			UserID:           u.ID,
			AccessToken:      "expired-access",
			RefreshToken:     "expired-refresh",
			RefreshExpiresAt: time.Now().Add(-time.Hour),
		},
		{
			ID:               uuid.New(),
			UserID:           u.ID,
			AccessToken:      "live-access",
			RefreshToken:     "live-refresh",
			RefreshExpiresAt: time.Now().Add(time.Hour),
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	deleted, err := repo.DeleteExpired(dbc)
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("DeleteExpired: expected 1 row, got %d", deleted)
	}

	live, err := repo.GetByAccessToken(dbc, "live-access")
	if err != nil {
		t.Fatalf("GetByAccessToken: %v", err)
	}
	if live == nil {
		t.Fatalf("GetByAccessToken: live token should survive DeleteExpired")
	}
}
