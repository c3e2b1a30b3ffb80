package species

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/aquasync-backend/internal/domain"
	"github.com/yungbote/aquasync-backend/internal/pkg/dbctx"
	"github.com/yungbote/aquasync-backend/internal/platform/logger"
)

/*
SpeciesRepo is the persistence surface for the species catalog.

ListAll is the one-pass read used by the compatibility pipeline: it
returns every live species ordered by name so pair enumeration is
deterministic across runs.
*/
type SpeciesRepo interface {
	Create(dbc dbctx.Context, sp *types.Species) error
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]types.Species, error)
	GetByName(dbc dbctx.Context, name string) (*types.Species, error)
	NameExists(dbc dbctx.Context, name string) (bool, error)
	List(dbc dbctx.Context, waterType string, limit, offset int) ([]types.Species, error)
	ListAll(dbc dbctx.Context) ([]types.Species, error)
	CountAll(dbc dbctx.Context) (int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	UpdateImageFields(dbc dbctx.Context, id uuid.UUID, bucketKey, url string) error
	UpdateCardFields(dbc dbctx.Context, id uuid.UUID, cardColor, bucketKey, url string) error
	ListMissingImages(dbc dbctx.Context) ([]types.Species, error)
	SoftDelete(dbc dbctx.Context, id uuid.UUID) error
}

type speciesRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSpeciesRepo(db *gorm.DB, baseLog *logger.Logger) SpeciesRepo {
	return &speciesRepo{db: db, log: baseLog.With("repo", "SpeciesRepo")}
}

func (r *speciesRepo) Create(dbc dbctx.Context, sp *types.Species) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).Create(sp).Error
}

func (r *speciesRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]types.Species, error) {
	if len(ids) == 0 {
		return []types.Species{}, nil
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []types.Species
	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *speciesRepo) GetByName(dbc dbctx.Context, name string) (*types.Species, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var sp types.Species
	if err := transaction.WithContext(dbc.Ctx).
		Where("name = ?", strings.TrimSpace(name)).
		Limit(1).
		Find(&sp).Error; err != nil {
		return nil, err
	}
	if sp.ID == uuid.Nil {
		return nil, nil
	}
	return &sp, nil
}

func (r *speciesRepo) NameExists(dbc dbctx.Context, name string) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Species{}).
		Where("name = ?", strings.TrimSpace(name)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *speciesRepo) List(dbc dbctx.Context, waterType string, limit, offset int) ([]types.Species, error) {
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
	q := transaction.WithContext(dbc.Ctx).Model(&types.Species{})
	if waterType != "" {
		q = q.Where("water_type = ?", waterType)
	}
	var out []types.Species
	if err := q.Order("name ASC").Limit(limit).Offset(offset).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *speciesRepo) ListAll(dbc dbctx.Context) ([]types.Species, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []types.Species
	if err := transaction.WithContext(dbc.Ctx).
		Order("name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *speciesRepo) CountAll(dbc dbctx.Context) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Species{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *speciesRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	updates["updated_at"] = time.Now()
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Species{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *speciesRepo) UpdateImageFields(dbc dbctx.Context, id uuid.UUID, bucketKey, url string) error {
	return r.UpdateFields(dbc, id, map[string]interface{}{
		"image_bucket_key": bucketKey,
		"image_url":        url,
	})
}

func (r *speciesRepo) UpdateCardFields(dbc dbctx.Context, id uuid.UUID, cardColor, bucketKey, url string) error {
	return r.UpdateFields(dbc, id, map[string]interface{}{
		"card_color":      cardColor,
		"card_bucket_key": bucketKey,
		"card_url":        url,
	})
}

// ListMissingImages returns live species with no uploaded photo, the working
// set for the placeholder card render job.
func (r *speciesRepo) ListMissingImages(dbc dbctx.Context) ([]types.Species, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []types.Species
	if err := transaction.WithContext(dbc.Ctx).
		Where("image_bucket_key = '' OR image_bucket_key IS NULL").
		Order("name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *speciesRepo) SoftDelete(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&types.Species{}).Error
}
