package captures

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/aquasync-backend/internal/domain"
	"github.com/yungbote/aquasync-backend/internal/pkg/dbctx"
	"github.com/yungbote/aquasync-backend/internal/platform/logger"
)

type CaptureRepo interface {
	Create(dbc dbctx.Context, capture *types.Capture) error
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]types.Capture, error)
	ListByOwner(dbc dbctx.Context, ownerUserID uuid.UUID, limit, offset int) ([]types.Capture, error)
	CountByOwner(dbc dbctx.Context, ownerUserID uuid.UUID) (int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	SetSpecies(dbc dbctx.Context, id uuid.UUID, speciesID *uuid.UUID) error
	SoftDelete(dbc dbctx.Context, id uuid.UUID) error
}

type captureRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCaptureRepo(db *gorm.DB, baseLog *logger.Logger) CaptureRepo {
	return &captureRepo{db: db, log: baseLog.With("repo", "CaptureRepo")}
}

func (r *captureRepo) Create(dbc dbctx.Context, capture *types.Capture) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).Create(capture).Error
}

func (r *captureRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]types.Capture, error) {
	if len(ids) == 0 {
		return []types.Capture{}, nil
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []types.Capture
	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *captureRepo) ListByOwner(dbc dbctx.Context, ownerUserID uuid.UUID, limit, offset int) ([]types.Capture, error) {
	if ownerUserID == uuid.Nil {
		return []types.Capture{}, nil
	}
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
	var out []types.Capture
	if err := transaction.WithContext(dbc.Ctx).
		Where("owner_user_id = ?", ownerUserID).
		Order("captured_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *captureRepo) CountByOwner(dbc dbctx.Context, ownerUserID uuid.UUID) (int64, error) {
	if ownerUserID == uuid.Nil {
		return 0, nil
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Capture{}).
		Where("owner_user_id = ?", ownerUserID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *captureRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	updates["updated_at"] = time.Now()
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Capture{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *captureRepo) SetSpecies(dbc dbctx.Context, id uuid.UUID, speciesID *uuid.UUID) error {
	return r.UpdateFields(dbc, id, map[string]interface{}{
		"species_id": speciesID,
	})
}

func (r *captureRepo) SoftDelete(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&types.Capture{}).Error
}
