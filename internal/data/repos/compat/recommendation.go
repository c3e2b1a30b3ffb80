package compat

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/aquasync-backend/internal/domain"
	"github.com/yungbote/aquasync-backend/internal/pkg/dbctx"
	"github.com/yungbote/aquasync-backend/internal/platform/logger"
)

var recommendationUpdateColumns = []string{
	"compatible_with",
	"compatible_count",
	"computed_at",
	"updated_at",
}

type RecommendationRepo interface {
	UpsertBatch(dbc dbctx.Context, recs []types.TankmateRecommendation) error
	UpsertOne(dbc dbctx.Context, rec *types.TankmateRecommendation) error
	GetBySpeciesName(dbc dbctx.Context, name string) (*types.TankmateRecommendation, error)
	ListAll(dbc dbctx.Context) ([]types.TankmateRecommendation, error)
	CountAll(dbc dbctx.Context) (int64, error)
	PruneNotIn(dbc dbctx.Context, names []string) (int64, error)
}

type recommendationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecommendationRepo(db *gorm.DB, baseLog *logger.Logger) RecommendationRepo {
	return &recommendationRepo{db: db, log: baseLog.With("repo", "RecommendationRepo")}
}

func (r *recommendationRepo) UpsertBatch(dbc dbctx.Context, recs []types.TankmateRecommendation) error {
	if len(recs) == 0 {
		return nil
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "species_name"}},
		DoUpdates: clause.AssignmentColumns(recommendationUpdateColumns),
	}).CreateInBatches(&recs, 200).Error
}

func (r *recommendationRepo) UpsertOne(dbc dbctx.Context, rec *types.TankmateRecommendation) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "species_name"}},
		DoUpdates: clause.AssignmentColumns(recommendationUpdateColumns),
	}).Create(rec).Error
}

func (r *recommendationRepo) GetBySpeciesName(dbc dbctx.Context, name string) (*types.TankmateRecommendation, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var rec types.TankmateRecommendation
	if err := transaction.WithContext(dbc.Ctx).
		Where("species_name = ?", name).
		Limit(1).
		Find(&rec).Error; err != nil {
		return nil, err
	}
	if rec.ID == uuid.Nil {
		return nil, nil
	}
	return &rec, nil
}

func (r *recommendationRepo) ListAll(dbc dbctx.Context) ([]types.TankmateRecommendation, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []types.TankmateRecommendation
	if err := transaction.WithContext(dbc.Ctx).
		Order("species_name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *recommendationRepo) CountAll(dbc dbctx.Context) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.TankmateRecommendation{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// PruneNotIn removes rollups for species no longer in the catalog. An empty
// names slice clears the table.
func (r *recommendationRepo) PruneNotIn(dbc dbctx.Context, names []string) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx)
	if len(names) == 0 {
		res := q.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&types.TankmateRecommendation{})
		return res.RowsAffected, res.Error
	}
	res := q.Where("species_name NOT IN ?", names).
		Delete(&types.TankmateRecommendation{})
	return res.RowsAffected, res.Error
}
