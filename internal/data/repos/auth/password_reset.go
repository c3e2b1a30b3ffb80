package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/aquasync-backend/internal/domain"
	"github.com/yungbote/aquasync-backend/internal/pkg/dbctx"
	"github.com/yungbote/aquasync-backend/internal/platform/logger"
)

type PasswordResetTokenRepo interface {
	Create(dbc dbctx.Context, token *types.PasswordResetToken) error
	GetByTokenHash(dbc dbctx.Context, tokenHash string) (*types.PasswordResetToken, error)
	MarkUsed(dbc dbctx.Context, id uuid.UUID) error
	InvalidateByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) error
	DeleteExpired(dbc dbctx.Context) (int64, error)
}

type passwordResetTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPasswordResetTokenRepo(db *gorm.DB, baseLog *logger.Logger) PasswordResetTokenRepo {
	return &passwordResetTokenRepo{db: db, log: baseLog.With("repo", "PasswordResetTokenRepo")}
}

func (r *passwordResetTokenRepo) Create(dbc dbctx.Context, token *types.PasswordResetToken) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).Create(token).Error
}

func (r *passwordResetTokenRepo) GetByTokenHash(dbc dbctx.Context, tokenHash string) (*types.PasswordResetToken, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var token types.PasswordResetToken
	if err := transaction.WithContext(dbc.Ctx).
		Where("token_hash = ?", tokenHash).
		Limit(1).
		Find(&token).Error; err != nil {
		return nil, err
	}
	if token.ID == uuid.Nil {
		return nil, nil
	}
	return &token, nil
}

func (r *passwordResetTokenRepo) MarkUsed(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now()
	return transaction.WithContext(dbc.Ctx).
		Model(&types.PasswordResetToken{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"used_at":    &now,
			"updated_at": now,
		}).Error
}

func (r *passwordResetTokenRepo) InvalidateByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now()
	return transaction.WithContext(dbc.Ctx).
		Model(&types.PasswordResetToken{}).
		Where("user_id IN ? AND used_at IS NULL", userIDs).
		Updates(map[string]interface{}{
			"used_at":    &now,
			"updated_at": now,
		}).Error
}

func (r *passwordResetTokenRepo) DeleteExpired(dbc dbctx.Context) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Unscoped().
		Where("expires_at < ?", time.Now()).
		Delete(&types.PasswordResetToken{})
	return res.RowsAffected, res.Error
}
