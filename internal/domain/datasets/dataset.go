package datasets

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/aquasync-backend/internal/domain/species"
)

const (
	StatusDraft    = "draft"
	StatusReady    = "ready"
	StatusArchived = "archived"
)

// Dataset groups labeled images for the external identification training
// pipeline. Training itself runs outside this service; we only curate.
type Dataset struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name        string         `gorm:"uniqueIndex;not null;column:name" json:"name"`
	Description string         `gorm:"type:text;column:description" json:"description"`
	Status      string         `gorm:"not null;default:'draft';column:status;index" json:"status"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Dataset) TableName() string { return "dataset" }

type DatasetImage struct {
	ID              uuid.UUID        `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	DatasetID       uuid.UUID        `gorm:"type:uuid;not null;index" json:"dataset_id"`
	Dataset         *Dataset         `gorm:"constraint:OnDelete:CASCADE;foreignKey:DatasetID;references:ID" json:"-"`
	SpeciesID       *uuid.UUID       `gorm:"type:uuid;column:species_id;index" json:"species_id,omitempty"`
	Species         *species.Species `gorm:"foreignKey:SpeciesID;references:ID" json:"species,omitempty"`
	SourceCaptureID *uuid.UUID       `gorm:"type:uuid;column:source_capture_id" json:"source_capture_id,omitempty"`
	BucketKey       string           `gorm:"not null;column:bucket_key" json:"bucket_key"`
	URL             string           `gorm:"not null;column:url" json:"url"`
	Label           string           `gorm:"column:label;index" json:"label"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (DatasetImage) TableName() string { return "dataset_image" }
