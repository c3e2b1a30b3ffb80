package datasets

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/aquasync-backend/internal/domain"
	"github.com/yungbote/aquasync-backend/internal/pkg/dbctx"
	"github.com/yungbote/aquasync-backend/internal/platform/logger"
)

type DatasetRepo interface {
	Create(dbc dbctx.Context, dataset *types.Dataset) error
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]types.Dataset, error)
	GetByName(dbc dbctx.Context, name string) (*types.Dataset, error)
	List(dbc dbctx.Context, status string, limit, offset int) ([]types.Dataset, error)
	UpdateStatus(dbc dbctx.Context, id uuid.UUID, status string) error
	SoftDelete(dbc dbctx.Context, id uuid.UUID) error

	AddImages(dbc dbctx.Context, images []*types.DatasetImage) error
	GetImage(dbc dbctx.Context, imageID uuid.UUID) (*types.DatasetImage, error)
	ListImages(dbc dbctx.Context, datasetID uuid.UUID, limit, offset int) ([]types.DatasetImage, error)
	CountImages(dbc dbctx.Context, datasetID uuid.UUID) (int64, error)
	CountImagesByLabel(dbc dbctx.Context, datasetID uuid.UUID) (map[string]int64, error)
	DeleteImage(dbc dbctx.Context, imageID uuid.UUID) error
}

type datasetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDatasetRepo(db *gorm.DB, baseLog *logger.Logger) DatasetRepo {
	return &datasetRepo{db: db, log: baseLog.With("repo", "DatasetRepo")}
}

func (r *datasetRepo) Create(dbc dbctx.Context, dataset *types.Dataset) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).Create(dataset).Error
}

func (r *datasetRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]types.Dataset, error) {
	if len(ids) == 0 {
		return []types.Dataset{}, nil
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []types.Dataset
	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *datasetRepo) GetByName(dbc dbctx.Context, name string) (*types.Dataset, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var ds types.Dataset
	if err := transaction.WithContext(dbc.Ctx).
		Where("name = ?", strings.TrimSpace(name)).
		Limit(1).
		Find(&ds).Error; err != nil {
		return nil, err
	}
	if ds.ID == uuid.Nil {
		return nil, nil
	}
	return &ds, nil
}

func (r *datasetRepo) List(dbc dbctx.Context, status string, limit, offset int) ([]types.Dataset, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	q := transaction.WithContext(dbc.Ctx).Model(&types.Dataset{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []types.Dataset
	if err := q.Order("name ASC").Limit(limit).Offset(offset).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *datasetRepo) UpdateStatus(dbc dbctx.Context, id uuid.UUID, status string) error {
	if id == uuid.Nil {
		return nil
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Dataset{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

func (r *datasetRepo) SoftDelete(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&types.Dataset{}).Error
}

func (r *datasetRepo) AddImages(dbc dbctx.Context, images []*types.DatasetImage) error {
	if len(images) == 0 {
		return nil
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).CreateInBatches(&images, 200).Error
}

func (r *datasetRepo) GetImage(dbc dbctx.Context, imageID uuid.UUID) (*types.DatasetImage, error) {
	if imageID == uuid.Nil {
		return nil, nil
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var img types.DatasetImage
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", imageID).
		Limit(1).
		Find(&img).Error; err != nil {
		return nil, err
	}
	if img.ID == uuid.Nil {
		return nil, nil
	}
	return &img, nil
}

func (r *datasetRepo) ListImages(dbc dbctx.Context, datasetID uuid.UUID, limit, offset int) ([]types.DatasetImage, error) {
	if datasetID == uuid.Nil {
		return []types.DatasetImage{}, nil
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}
	var out []types.DatasetImage
	if err := transaction.WithContext(dbc.Ctx).
		Where("dataset_id = ?", datasetID).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *datasetRepo) CountImages(dbc dbctx.Context, datasetID uuid.UUID) (int64, error) {
	if datasetID == uuid.Nil {
		return 0, nil
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.DatasetImage{}).
		Where("dataset_id = ?", datasetID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *datasetRepo) CountImagesByLabel(dbc dbctx.Context, datasetID uuid.UUID) (map[string]int64, error) {
	if datasetID == uuid.Nil {
		return map[string]int64{}, nil
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []struct {
		Label string
		Count int64
	}
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.DatasetImage{}).
		Select("label, COUNT(*) AS count").
		Where("dataset_id = ?", datasetID).
		Group("label").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Label] = row.Count
	}
	return out, nil
}

func (r *datasetRepo) DeleteImage(dbc dbctx.Context, imageID uuid.UUID) error {
	if imageID == uuid.Nil {
		return nil
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Where("id = ?", imageID).
		Delete(&types.DatasetImage{}).Error
}
