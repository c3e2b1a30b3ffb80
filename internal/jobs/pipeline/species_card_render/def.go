package species_card_render

import (
	"gorm.io/gorm"

	"github.com/yungbote/aquasync-backend/internal/data/repos"
	types "github.com/yungbote/aquasync-backend/internal/domain"
	"github.com/yungbote/aquasync-backend/internal/platform/logger"
	"github.com/yungbote/aquasync-backend/internal/services"
)

// Pipeline sweeps the catalog for species that have no uploaded photo and
// renders each one a placeholder card. Individual render failures are counted
// and retried by the next sweep, never fatal to the run.
type Pipeline struct {
	db      *gorm.DB
	log     *logger.Logger
	species repos.SpeciesRepo
	cards   services.SpeciesCardService
}

func New(
	db *gorm.DB,
	baseLog *logger.Logger,
	species repos.SpeciesRepo,
	cards services.SpeciesCardService,
) *Pipeline {
	return &Pipeline{
		db:      db,
		log:     baseLog.With("job", types.JobTypeSpeciesCardRender),
		species: species,
		cards:   cards,
	}
}

func (p *Pipeline) Type() string { return types.JobTypeSpeciesCardRender }
