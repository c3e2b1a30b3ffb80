package compat

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TankmateRecommendation is the per-species rollup: every species loaded by a
// run gets a row, even with zero compatible partners. An absent row therefore
// means "no run has covered this species yet", never "no tankmates".
type TankmateRecommendation struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SpeciesName     string         `gorm:"uniqueIndex;not null;column:species_name" json:"species_name"`
	CompatibleWith  datatypes.JSON `gorm:"type:jsonb;column:compatible_with" json:"compatible_with"`
	CompatibleCount int            `gorm:"not null;default:0;column:compatible_count" json:"compatible_count"`
	ComputedAt      time.Time      `gorm:"not null;column:computed_at" json:"computed_at"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (TankmateRecommendation) TableName() string { return "tankmate_recommendation" }
