package captures

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/aquasync-backend/internal/domain/species"
	"github.com/yungbote/aquasync-backend/internal/domain/user"
)

// Capture is a hobbyist's photographed sighting. SpeciesID stays nil until the
// fish has been identified (externally or by hand).
type Capture struct {
	ID             uuid.UUID        `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OwnerUserID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"owner_user_id"`
	Owner          *user.User       `gorm:"constraint:OnDelete:CASCADE;foreignKey:OwnerUserID;references:ID" json:"-"`
	SpeciesID      *uuid.UUID       `gorm:"type:uuid;column:species_id;index" json:"species_id,omitempty"`
	Species        *species.Species `gorm:"foreignKey:SpeciesID;references:ID" json:"species,omitempty"`
	PhotoBucketKey string           `gorm:"not null;column:photo_bucket_key" json:"photo_bucket_key"`
	PhotoURL       string           `gorm:"not null;column:photo_url" json:"photo_url"`
	Notes          string           `gorm:"type:text;column:notes" json:"notes"`
	Location       string           `gorm:"column:location" json:"location"`
	CapturedAt     time.Time        `gorm:"not null;column:captured_at;index" json:"captured_at"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Capture) TableName() string { return "capture" }
