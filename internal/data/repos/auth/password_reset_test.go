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

func TestPasswordResetTokenRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewPasswordResetTokenRepo(db, testutil.Logger(t))
	ctx := context.Background()
	dbc := dbctx.New(ctx).WithTx(tx)

	u := testutil.SeedUser(t, ctx, tx, "reset@example.com")

	token := &types.PasswordResetToken{
		ID:        uuid.New(),
		UserID:    u.ID,
		TokenHash: "hash-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := repo.Create(dbc, token); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByTokenHash(dbc, "hash-1")
	if err != nil {
		t.Fatalf("GetByTokenHash: %v", err)
	}
	if got == nil || got.ID != token.ID {
		t.Fatalf("GetByTokenHash: unexpected result: %+v", got)
	}
	if got.UsedAt != nil {
		t.Fatalf("GetByTokenHash: fresh token should be unused")
	}

	missing, err := repo.GetByTokenHash(dbc, "nope")
	if err != nil {
		t.Fatalf("GetByTokenHash (missing): %v", err)
	}
	if missing != nil {
		t.Fatalf("GetByTokenHash (missing): expected nil, got %+v", missing)
	}

	if err := repo.MarkUsed(dbc, token.ID); err != nil {
		t.Fatalf("MarkUsed: %v", err)
	}
	got, err = repo.GetByTokenHash(dbc, "hash-1")
	if err != nil {
		t.Fatalf("GetByTokenHash (after use): %v", err)
	}
	if got == nil || got.UsedAt == nil {
		t.Fatalf("MarkUsed not applied: %+v", got)
	}

	// A successful reset voids every other outstanding token for the user.
	second := &types.PasswordResetToken{
		ID:        uuid.New(),
		UserID:    u.ID,
		TokenHash: "hash-2",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := repo.Create(dbc, second); err != nil {
		t.Fatalf("Create (second): %v", err)
	}
	if err := repo.InvalidateByUserIDs(dbc, []uuid.UUID{u.ID}); err != nil {
		t.Fatalf("InvalidateByUserIDs: %v", err)
	}
	got, err = repo.GetByTokenHash(dbc, "hash-2")
	if err != nil {
		t.Fatalf("GetByTokenHash (invalidated): %v", err)
	}
	if got == nil || got.UsedAt == nil {
		t.Fatalf("InvalidateByUserIDs not applied: %+v", got)
	}

	expired := &types.PasswordResetToken{
		ID:        uuid.New(),
		UserID:    u.ID,
		TokenHash: "hash-expired",
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	if err := repo.Create(dbc, expired); err != nil {
		t.Fatalf("Create (expired): %v", err)
	}
	deleted, err := repo.DeleteExpired(dbc)
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("DeleteExpired: expected 1 row, got %d", deleted)
	}
}
