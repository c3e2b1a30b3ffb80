package services

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/aquasync-backend/internal/data/repos"
	types "github.com/yungbote/aquasync-backend/internal/domain"
	"github.com/yungbote/aquasync-backend/internal/pkg/ctxutil"
	"github.com/yungbote/aquasync-backend/internal/pkg/dbctx"
	"github.com/yungbote/aquasync-backend/internal/platform/apierr"
	"github.com/yungbote/aquasync-backend/internal/platform/gcp"
	"github.com/yungbote/aquasync-backend/internal/platform/logger"
)

// SpeciesInput carries the admin-editable catalog fields.
type SpeciesInput struct {
	Name           string  `json:"name"`
	ScientificName string  `json:"scientific_name"`
	WaterType      string  `json:"water_type"`
	Temperament    string  `json:"temperament"`
	MinTempC       float64 `json:"min_temp_c"`
	MaxTempC       float64 `json:"max_temp_c"`
	MinPH          float64 `json:"min_ph"`
	MaxPH          float64 `json:"max_ph"`
	AdultSizeCM    float64 `json:"adult_size_cm"`
	MinTankLiters  float64 `json:"min_tank_liters"`
	SchoolingMin   int     `json:"schooling_min"`
	Diet           string  `json:"diet"`
	Description    string  `json:"description"`
}

type SpeciesService interface {
	List(ctx context.Context, waterType string, limit, offset int) ([]types.Species, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Species, error)
	Create(ctx context.Context, input SpeciesInput) (*types.Species, error)
	Update(ctx context.Context, id uuid.UUID, input SpeciesInput) (*types.Species, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UploadImage(ctx context.Context, id uuid.UUID, filename string, raw []byte) (*types.Species, error)
	EnqueueCardRender(ctx context.Context) (*types.JobRun, error)
}

type speciesService struct {
	db            *gorm.DB
	log           *logger.Logger
	speciesRepo   repos.SpeciesRepo
	jobRunRepo    repos.JobRunRepo
	bucketService gcp.BucketService
	notifier      JobNotifier
}

func NewSpeciesService(
	db *gorm.DB,
	log *logger.Logger,
	speciesRepo repos.SpeciesRepo,
	jobRunRepo repos.JobRunRepo,
	bucketService gcp.BucketService,
	notifier JobNotifier,
) SpeciesService {
	return &speciesService{
		db:            db,
		log:           log.With("service", "SpeciesService"),
		speciesRepo:   speciesRepo,
		jobRunRepo:    jobRunRepo,
		bucketService: bucketService,
		notifier:      notifier,
	}
}

var validWaterTypes = map[string]struct{}{
	types.WaterFreshwater: {},
	types.WaterSaltwater:  {},
	types.WaterBrackish:   {},
}

var validTemperaments = map[string]struct{}{
	types.TemperamentPeaceful:       {},
	types.TemperamentSemiAggressive: {},
	types.TemperamentAggressive:     {},
}

var validDiets = map[string]struct{}{
	types.DietOmnivore:  {},
	types.DietCarnivore: {},
	types.DietHerbivore: {},
}

func normalizeSpeciesInput(input *SpeciesInput) {
	input.Name = strings.TrimSpace(input.Name)
	input.ScientificName = strings.TrimSpace(input.ScientificName)
	input.WaterType = strings.ToLower(strings.TrimSpace(input.WaterType))
	input.Temperament = strings.ToLower(strings.TrimSpace(input.Temperament))
	input.Diet = strings.ToLower(strings.TrimSpace(input.Diet))
	input.Description = strings.TrimSpace(input.Description)
	if input.SchoolingMin < 1 {
		input.SchoolingMin = 1
	}
}

func validateSpeciesInput(input SpeciesInput) error {
	if input.Name == "" {
		return fmt.Errorf("name is required")
	}
	if _, ok := validWaterTypes[input.WaterType]; !ok {
		return fmt.Errorf("water_type %q is not one of freshwater, saltwater, brackish", input.WaterType)
	}
	if _, ok := validTemperaments[input.Temperament]; !ok {
		return fmt.Errorf("temperament %q is not one of peaceful, semi_aggressive, aggressive", input.Temperament)
	}
	if input.MinTempC >= input.MaxTempC {
		return fmt.Errorf("min_temp_c must be below max_temp_c")
	}
	if input.MinPH >= input.MaxPH {
		return fmt.Errorf("min_ph must be below max_ph")
	}
	if input.MinPH < 0 || input.MaxPH > 14 {
		return fmt.Errorf("ph range must stay within 0 and 14")
	}
	if input.AdultSizeCM <= 0 {
		return fmt.Errorf("adult_size_cm must be positive")
	}
	if input.MinTankLiters < 0 {
		return fmt.Errorf("min_tank_liters must not be negative")
	}
	if input.Diet != "" {
		if _, ok := validDiets[input.Diet]; !ok {
			return fmt.Errorf("diet %q is not one of omnivore, carnivore, herbivore", input.Diet)
		}
	}
	return nil
}

func (ss *speciesService) List(ctx context.Context, waterType string, limit, offset int) ([]types.Species, int64, error) {
	dbc := dbctx.New(ctx)
	waterType = strings.ToLower(strings.TrimSpace(waterType))
	if waterType != "" {
		if _, ok := validWaterTypes[waterType]; !ok {
			return nil, 0, apierr.BadRequest("invalid_water_type", fmt.Errorf("unknown water type %q", waterType))
		}
	}
	list, err := ss.speciesRepo.List(dbc, waterType, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list species: %w", err)
	}
	total, err := ss.speciesRepo.CountAll(dbc)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count species: %w", err)
	}
	return list, total, nil
}

func (ss *speciesService) Get(ctx context.Context, id uuid.UUID) (*types.Species, error) {
	found, err := ss.speciesRepo.GetByIDs(dbctx.New(ctx), []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch species: %w", err)
	}
	if len(found) == 0 {
		return nil, apierr.NotFound("species_not_found", fmt.Errorf("species %s does not exist", id))
	}
	return &found[0], nil
}

func (ss *speciesService) Create(ctx context.Context, input SpeciesInput) (*types.Species, error) {
	normalizeSpeciesInput(&input)
	if err := validateSpeciesInput(input); err != nil {
		return nil, apierr.BadRequest("invalid_species", err)
	}

	dbc := dbctx.New(ctx)
	exists, err := ss.speciesRepo.NameExists(dbc, input.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check species name: %w", err)
	}
	if exists {
		return nil, apierr.Conflict("species_name_taken", fmt.Errorf("species %q already exists", input.Name))
	}

	sp := &types.Species{
		ID:             uuid.New(),
		Name:           input.Name,
		ScientificName: input.ScientificName,
		WaterType:      input.WaterType,
		Temperament:    input.Temperament,
		MinTempC:       input.MinTempC,
		MaxTempC:       input.MaxTempC,
		MinPH:          input.MinPH,
		MaxPH:          input.MaxPH,
		AdultSizeCM:    input.AdultSizeCM,
		MinTankLiters:  input.MinTankLiters,
		SchoolingMin:   input.SchoolingMin,
		Diet:           input.Diet,
		Description:    input.Description,
		CardColor:      nrgbaToHex(colorForKey(input.Name)),
	}
	if err := ss.speciesRepo.Create(dbc, sp); err != nil {
		if repos.IsUniqueViolation(err) {
			// Lost a race with a concurrent create after the NameExists check.
			return nil, apierr.Conflict("species_name_taken", err)
		}
		return nil, fmt.Errorf("failed to create species: %w", err)
	}

	ss.log.Info("species created", "species_id", sp.ID, "name", sp.Name)
	ss.maybeEnqueueCardRender(dbc)
	return sp, nil
}

func (ss *speciesService) Update(ctx context.Context, id uuid.UUID, input SpeciesInput) (*types.Species, error) {
	normalizeSpeciesInput(&input)
	if err := validateSpeciesInput(input); err != nil {
		return nil, apierr.BadRequest("invalid_species", err)
	}

	dbc := dbctx.New(ctx)
	current, err := ss.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != current.Name {
		exists, nErr := ss.speciesRepo.NameExists(dbc, input.Name)
		if nErr != nil {
			return nil, fmt.Errorf("failed to check species name: %w", nErr)
		}
		if exists {
			return nil, apierr.Conflict("species_name_taken", fmt.Errorf("species %q already exists", input.Name))
		}
	}

	// Renames orphan verdicts keyed on the old name; the next matrix build
	// prunes them and writes rows under the new name.
	updates := map[string]interface{}{
		"name":            input.Name,
		"scientific_name": input.ScientificName,
		"water_type":      input.WaterType,
		"temperament":     input.Temperament,
		"min_temp_c":      input.MinTempC,
		"max_temp_c":      input.MaxTempC,
		"min_ph":          input.MinPH,
		"max_ph":          input.MaxPH,
		"adult_size_cm":   input.AdultSizeCM,
		"min_tank_liters": input.MinTankLiters,
		"schooling_min":   input.SchoolingMin,
		"diet":            input.Diet,
		"description":     input.Description,
	}
	if err := ss.speciesRepo.UpdateFields(dbc, id, updates); err != nil {
		return nil, fmt.Errorf("failed to update species: %w", err)
	}

	updated, err := ss.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if updated.ImageBucketKey == "" {
		ss.maybeEnqueueCardRender(dbc)
	}
	return updated, nil
}

func (ss *speciesService) Delete(ctx context.Context, id uuid.UUID) error {
	dbc := dbctx.New(ctx)
	sp, err := ss.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := ss.speciesRepo.SoftDelete(dbc, id); err != nil {
		return fmt.Errorf("failed to delete species: %w", err)
	}
	ss.log.Info("species deleted", "species_id", id, "name", sp.Name)
	return nil
}

var validImageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".webp": {},
}

func (ss *speciesService) UploadImage(ctx context.Context, id uuid.UUID, filename string, raw []byte) (*types.Species, error) {
	if len(raw) == 0 {
		return nil, apierr.BadRequest("empty_file", fmt.Errorf("image file is empty"))
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := validImageExtensions[ext]; !ok {
		return nil, apierr.BadRequest("unsupported_image_type", fmt.Errorf("extension %q not supported", ext))
	}
	if ss.bucketService == nil {
		return nil, fmt.Errorf("species image storage not configured")
	}

	dbc := dbctx.New(ctx)
	sp, err := ss.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	oldKey := sp.ImageBucketKey
	newKey := fmt.Sprintf("species_image/%s/%d%s", id.String(), time.Now().UnixNano(), ext)
	if err := ss.bucketService.UploadFile(dbc, gcp.BucketCategorySpecies, newKey, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("failed to upload species image: %w", err)
	}
	imageURL := ss.bucketService.GetPublicURL(gcp.BucketCategorySpecies, newKey)
	if err := ss.speciesRepo.UpdateImageFields(dbc, id, newKey, imageURL); err != nil {
		return nil, fmt.Errorf("failed to persist image fields: %w", err)
	}
	if oldKey != "" && oldKey != newKey {
		if dErr := ss.bucketService.DeleteFile(dbc, gcp.BucketCategorySpecies, oldKey); dErr != nil {
			ss.log.Warn("failed to delete old species image (ignored)", "old_key", oldKey, "error", dErr)
		}
	}
	return ss.Get(ctx, id)
}

// EnqueueCardRender queues a placeholder card render over every species that
// still has no photo. One render job runs at a time.
func (ss *speciesService) EnqueueCardRender(ctx context.Context) (*types.JobRun, error) {
	dbc := dbctx.New(ctx)
	active, err := ss.jobRunRepo.ExistsRunnableByType(dbc, types.JobTypeSpeciesCardRender)
	if err != nil {
		return nil, fmt.Errorf("failed to check active render jobs: %w", err)
	}
	if active {
		return nil, apierr.Conflict("card_render_active", fmt.Errorf("a card render job is already queued or running"))
	}
	return ss.createCardRenderJob(dbc)
}

// maybeEnqueueCardRender is the best-effort variant used after catalog writes.
func (ss *speciesService) maybeEnqueueCardRender(dbc dbctx.Context) {
	active, err := ss.jobRunRepo.ExistsRunnableByType(dbc, types.JobTypeSpeciesCardRender)
	if err != nil {
		ss.log.Warn("failed to check active render jobs (skipping enqueue)", "error", err)
		return
	}
	if active {
		return
	}
	if _, err := ss.createCardRenderJob(dbc); err != nil {
		ss.log.Warn("failed to enqueue card render (ignored)", "error", err)
	}
}

func (ss *speciesService) createCardRenderJob(dbc dbctx.Context) (*types.JobRun, error) {
	job := &types.JobRun{
		ID:      uuid.New(),
		JobType: types.JobTypeSpeciesCardRender,
		Status:  types.JobStatusQueued,
		Stage:   "queued",
	}
	if rd := ctxutil.GetRequestData(dbc.Ctx); rd != nil {
		job.OwnerUserID = rd.UserID
	}
	if _, err := ss.jobRunRepo.Create(dbc, []*types.JobRun{job}); err != nil {
		return nil, fmt.Errorf("failed to create card render job: %w", err)
	}
	if ss.notifier != nil {
		ss.notifier.JobCreated(job)
	}
	ss.log.Info("card render job queued", "job_id", job.ID)
	return job, nil
}
