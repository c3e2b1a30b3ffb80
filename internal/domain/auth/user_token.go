package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/aquasync-backend/internal/domain/user"
)

// UserToken is one login session. Revocation is the soft delete: logout,
// rotation, and revoke-all remove the row, so a live row means a live
// session. The JWT carries its own access expiry; RefreshExpiresAt bounds
// how long the refresh half stays usable.
type UserToken struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID           uuid.UUID      `gorm:"index;not null" json:"user_id"`
	User             *user.User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	AccessToken      string         `gorm:"uniqueIndex;not null;column:access_token" json:"-"`
	RefreshToken     string         `gorm:"uniqueIndex;not null;column:refresh_token" json:"-"`
	RefreshExpiresAt time.Time      `gorm:"column:refresh_expires_at" json:"refresh_expires_at"`
	CreatedAt        time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (UserToken) TableName() string { return "user_token" }
