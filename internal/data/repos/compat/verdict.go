package compat

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/aquasync-backend/internal/domain"
	"github.com/yungbote/aquasync-backend/internal/pkg/dbctx"
	"github.com/yungbote/aquasync-backend/internal/platform/logger"
)

// verdictConflictColumns is the canonical pair key. Rows always store the
// byte-wise smaller name in species_a, so one row per unordered pair.
var verdictConflictColumns = []clause.Column{{Name: "species_a"}, {Name: "species_b"}}

var verdictUpdateColumns = []string{
	"compatible",
	"level",
	"reasons",
	"conditions",
	"score",
	"computed_at",
	"updated_at",
}

type VerdictRepo interface {
	UpsertBatch(dbc dbctx.Context, verdicts []types.CompatibilityVerdict) error
	UpsertOne(dbc dbctx.Context, verdict *types.CompatibilityVerdict) error
	GetByPair(dbc dbctx.Context, nameA, nameB string) (*types.CompatibilityVerdict, error)
	ListAll(dbc dbctx.Context) ([]types.CompatibilityVerdict, error)
	ListForSpecies(dbc dbctx.Context, name string) ([]types.CompatibilityVerdict, error)
	CountAll(dbc dbctx.Context) (int64, error)
	CountByLevel(dbc dbctx.Context) (map[string]int64, error)
	PruneNotIn(dbc dbctx.Context, names []string) (int64, error)
}

type verdictRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVerdictRepo(db *gorm.DB, baseLog *logger.Logger) VerdictRepo {
	return &verdictRepo{db: db, log: baseLog.With("repo", "VerdictRepo")}
}

func (r *verdictRepo) UpsertBatch(dbc dbctx.Context, verdicts []types.CompatibilityVerdict) error {
	if len(verdicts) == 0 {
		return nil
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).Clauses(clause.OnConflict{
		Columns:   verdictConflictColumns,
		DoUpdates: clause.AssignmentColumns(verdictUpdateColumns),
	}).Create(&verdicts).Error
}

func (r *verdictRepo) UpsertOne(dbc dbctx.Context, verdict *types.CompatibilityVerdict) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).Clauses(clause.OnConflict{
		Columns:   verdictConflictColumns,
		DoUpdates: clause.AssignmentColumns(verdictUpdateColumns),
	}).Create(verdict).Error
}

// GetByPair accepts the two names in either order.
func (r *verdictRepo) GetByPair(dbc dbctx.Context, nameA, nameB string) (*types.CompatibilityVerdict, error) {
	if nameA > nameB {
		nameA, nameB = nameB, nameA
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var v types.CompatibilityVerdict
	if err := transaction.WithContext(dbc.Ctx).
		Where("species_a = ? AND species_b = ?", nameA, nameB).
		Limit(1).
		Find(&v).Error; err != nil {
		return nil, err
	}
	if v.ID == uuid.Nil {
		return nil, nil
	}
	return &v, nil
}

func (r *verdictRepo) ListAll(dbc dbctx.Context) ([]types.CompatibilityVerdict, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []types.CompatibilityVerdict
	if err := transaction.WithContext(dbc.Ctx).
		Order("species_a ASC, species_b ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *verdictRepo) ListForSpecies(dbc dbctx.Context, name string) ([]types.CompatibilityVerdict, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []types.CompatibilityVerdict
	if err := transaction.WithContext(dbc.Ctx).
		Where("species_a = ? OR species_b = ?", name, name).
		Order("species_a ASC, species_b ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *verdictRepo) CountAll(dbc dbctx.Context) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.CompatibilityVerdict{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *verdictRepo) CountByLevel(dbc dbctx.Context) (map[string]int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []struct {
		Level string
		Count int64
	}
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.CompatibilityVerdict{}).
		Select("level, COUNT(*) AS count").
		Group("level").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Level] = row.Count
	}
	return out, nil
}

// PruneNotIn removes verdicts that reference any species outside names.
// An empty names slice clears the table.
func (r *verdictRepo) PruneNotIn(dbc dbctx.Context, names []string) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx)
	if len(names) == 0 {
		res := q.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&types.CompatibilityVerdict{})
		return res.RowsAffected, res.Error
	}
	res := q.Where("species_a NOT IN ? OR species_b NOT IN ?", names, names).
		Delete(&types.CompatibilityVerdict{})
	return res.RowsAffected, res.Error
}
