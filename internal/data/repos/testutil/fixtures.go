package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	types "github.com/yungbote/aquasync-backend/internal/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  "pw",
		FirstName: "A",
		LastName:  "B",
		Role:      types.RoleUser,
		Plan:      types.PlanFree,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedSpecies creates a freshwater community fish with mid-range water
// parameters; override fields on the returned struct before reuse.
func SeedSpecies(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Species {
	tb.Helper()
	s := &types.Species{
		ID:            uuid.New(),
		Name:          name,
		WaterType:     types.WaterFreshwater,
		Temperament:   types.TemperamentPeaceful,
		MinTempC:      22,
		MaxTempC:      26,
		MinPH:         6.5,
		MaxPH:         7.5,
		AdultSizeCM:   5,
		MinTankLiters: 40,
		SchoolingMin:  1,
		Diet:          "omnivore",
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed species: %v", err)
	}
	return s
}

func SeedVerdict(tb testing.TB, ctx context.Context, tx *gorm.DB, a, b, level string) *types.CompatibilityVerdict {
	tb.Helper()
	v := &types.CompatibilityVerdict{
		ID:         uuid.New(),
		SpeciesA:   a,
		SpeciesB:   b,
		Compatible: level == types.LevelCompatible,
		Level:      level,
		Reasons:    datatypes.JSON([]byte("[]")),
		Score:      1,
		ComputedAt: time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(v).Error; err != nil {
		tb.Fatalf("seed verdict: %v", err)
	}
	return v
}

func SeedCapture(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) *types.Capture {
	tb.Helper()
	c := &types.Capture{
		ID:             uuid.New(),
		OwnerUserID:    ownerID,
		PhotoBucketKey: "captures/" + uuid.NewString() + ".jpg",
		PhotoURL:       "https://cdn.test/capture.jpg",
		CapturedAt:     time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed capture: %v", err)
	}
	return c
}

func SeedDataset(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Dataset {
	tb.Helper()
	d := &types.Dataset{
		ID:     uuid.New(),
		Name:   name,
		Status: types.DatasetStatusDraft,
	}
	if err := tx.WithContext(ctx).Create(d).Error; err != nil {
		tb.Fatalf("seed dataset: %v", err)
	}
	return d
}

func SeedJobRun(tb testing.TB, ctx context.Context, tx *gorm.DB, jobType, status string) *types.JobRun {
	tb.Helper()
	j := &types.JobRun{
		ID:          uuid.New(),
		OwnerUserID: uuid.New(),
		JobType:     jobType,
		Status:      status,
		Stage:       "queued",
		Payload:     datatypes.JSON([]byte("{}")),
		Result:      datatypes.JSON([]byte("{}")),
	}
	if err := tx.WithContext(ctx).Create(j).Error; err != nil {
		tb.Fatalf("seed job run: %v", err)
	}
	return j
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
