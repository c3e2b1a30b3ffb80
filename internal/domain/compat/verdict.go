package compat

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	LevelCompatible   = "compatible"
	LevelConditional  = "conditional"
	LevelIncompatible = "incompatible"
)

// CompatibilityVerdict is one row per unordered species pair, stored in
// canonical order (SpeciesA < SpeciesB byte-wise). Runs upsert on the pair key
// so re-running replaces rather than accumulates.
type CompatibilityVerdict struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SpeciesA   string         `gorm:"not null;column:species_a;uniqueIndex:idx_verdict_pair,priority:1" json:"species_a"`
	SpeciesB   string         `gorm:"not null;column:species_b;uniqueIndex:idx_verdict_pair,priority:2;index" json:"species_b"`
	Compatible bool           `gorm:"not null;column:compatible" json:"compatible"`
	Level      string         `gorm:"not null;column:level;index" json:"level"`
	Reasons    datatypes.JSON `gorm:"type:jsonb;column:reasons" json:"reasons"`
	Conditions datatypes.JSON `gorm:"type:jsonb;column:conditions" json:"conditions,omitempty"`
	Score      float64        `gorm:"not null;column:score" json:"score"`
	ComputedAt time.Time      `gorm:"not null;column:computed_at" json:"computed_at"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (CompatibilityVerdict) TableName() string { return "compatibility_verdict" }
