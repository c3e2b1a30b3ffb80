package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/aquasync-backend/internal/domain/user"
)

// PasswordResetToken stores only the SHA-256 of the emailed token so a leaked
// table cannot be replayed.
type PasswordResetToken struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"index;not null" json:"user_id"`
	User      *user.User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	TokenHash string         `gorm:"uniqueIndex;not null;column:token_hash" json:"-"`
	ExpiresAt time.Time      `gorm:"not null;column:expires_at" json:"expires_at"`
	UsedAt    *time.Time     `gorm:"column:used_at" json:"used_at,omitempty"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (PasswordResetToken) TableName() string { return "password_reset_token" }
