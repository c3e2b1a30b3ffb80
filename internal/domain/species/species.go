package species

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	WaterFreshwater = "freshwater"
	WaterSaltwater  = "saltwater"
	WaterBrackish   = "brackish"

	TemperamentPeaceful       = "peaceful"
	TemperamentSemiAggressive = "semi_aggressive"
	TemperamentAggressive     = "aggressive"

	DietOmnivore  = "omnivore"
	DietCarnivore = "carnivore"
	DietHerbivore = "herbivore"
)

// Species is the catalog entry managed by admins. Name is the stable identity
// the compatibility tables key on.
type Species struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name           string    `gorm:"uniqueIndex;not null;column:name" json:"name"`
	ScientificName string    `gorm:"column:scientific_name" json:"scientific_name"`
	WaterType      string    `gorm:"not null;column:water_type;index" json:"water_type"`
	Temperament    string    `gorm:"not null;column:temperament" json:"temperament"`
	MinTempC       float64   `gorm:"not null;column:min_temp_c" json:"min_temp_c"`
	MaxTempC       float64   `gorm:"not null;column:max_temp_c" json:"max_temp_c"`
	MinPH          float64   `gorm:"not null;column:min_ph" json:"min_ph"`
	MaxPH          float64   `gorm:"not null;column:max_ph" json:"max_ph"`
	AdultSizeCM    float64   `gorm:"not null;column:adult_size_cm" json:"adult_size_cm"`
	MinTankLiters  float64   `gorm:"column:min_tank_liters" json:"min_tank_liters"`
	SchoolingMin   int       `gorm:"not null;default:1;column:schooling_min" json:"schooling_min"`
	Diet           string    `gorm:"column:diet" json:"diet"`
	Description    string    `gorm:"type:text;column:description" json:"description"`
	CardColor      string    `gorm:"column:card_color" json:"card_color"`
	CardBucketKey  string    `gorm:"column:card_bucket_key" json:"card_bucket_key"`
	CardURL        string    `gorm:"column:card_url" json:"card_url"`
	ImageBucketKey string    `gorm:"column:image_bucket_key" json:"image_bucket_key"`
	ImageURL       string    `gorm:"column:image_url" json:"image_url"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Species) TableName() string { return "species" }
