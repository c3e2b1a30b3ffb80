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
	"github.com/yungbote/aquasync-backend/internal/pkg/dbctx"
	"github.com/yungbote/aquasync-backend/internal/platform/apierr"
	"github.com/yungbote/aquasync-backend/internal/platform/gcp"
	"github.com/yungbote/aquasync-backend/internal/platform/logger"
)

// CaptureInput is the user-editable part of a capture. The photo arrives as a
// separate multipart part on create.
type CaptureInput struct {
	SpeciesID  *uuid.UUID `json:"species_id"`
	Notes      string     `json:"notes"`
	Location   string     `json:"location"`
	CapturedAt *time.Time `json:"captured_at"`
}

// CaptureService manages a hobbyist's photographed sightings. Every method is
// scoped to the authenticated owner; other users' captures read as not found.
type CaptureService interface {
	Create(ctx context.Context, input CaptureInput, filename string, photo []byte) (*types.Capture, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Capture, error)
	List(ctx context.Context, limit, offset int) ([]types.Capture, int64, error)
	Update(ctx context.Context, id uuid.UUID, input CaptureInput) (*types.Capture, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type captureService struct {
	db            *gorm.DB
	log           *logger.Logger
	captureRepo   repos.CaptureRepo
	speciesRepo   repos.SpeciesRepo
	bucketService gcp.BucketService
}

func NewCaptureService(
	db *gorm.DB,
	log *logger.Logger,
	captureRepo repos.CaptureRepo,
	speciesRepo repos.SpeciesRepo,
	bucketService gcp.BucketService,
) CaptureService {
	return &captureService{
		db:            db,
		log:           log.With("service", "CaptureService"),
		captureRepo:   captureRepo,
		speciesRepo:   speciesRepo,
		bucketService: bucketService,
	}
}

func (cs *captureService) Create(ctx context.Context, input CaptureInput, filename string, photo []byte) (*types.Capture, error) {
	ownerID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if len(photo) == 0 {
		return nil, apierr.BadRequest("photo_required", fmt.Errorf("a capture needs a photo"))
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := validImageExtensions[ext]; !ok {
		return nil, apierr.BadRequest("unsupported_image_type", fmt.Errorf("extension %q not supported", ext))
	}

	dbc := dbctx.New(ctx)
	if input.SpeciesID != nil {
		if err := cs.checkSpeciesExists(dbc, *input.SpeciesID); err != nil {
			return nil, err
		}
	}

	capturedAt := time.Now()
	if input.CapturedAt != nil && !input.CapturedAt.IsZero() {
		capturedAt = *input.CapturedAt
	}

	id := uuid.New()
	key := fmt.Sprintf("capture/%s/%s/%d%s", ownerID.String(), id.String(), time.Now().UnixNano(), ext)
	if cs.bucketService == nil {
		return nil, fmt.Errorf("capture storage not configured")
	}
	if err := cs.bucketService.UploadFile(dbc, gcp.BucketCategoryCapture, key, bytes.NewReader(photo)); err != nil {
		return nil, fmt.Errorf("failed to upload capture photo: %w", err)
	}

	capture := &types.Capture{
		ID:             id,
		OwnerUserID:    ownerID,
		SpeciesID:      input.SpeciesID,
		PhotoBucketKey: key,
		PhotoURL:       cs.bucketService.GetPublicURL(gcp.BucketCategoryCapture, key),
		Notes:          strings.TrimSpace(input.Notes),
		Location:       strings.TrimSpace(input.Location),
		CapturedAt:     capturedAt,
	}
	if err := cs.captureRepo.Create(dbc, capture); err != nil {
		// The photo is already in the bucket; drop it rather than leak it.
		if dErr := cs.bucketService.DeleteFile(dbc, gcp.BucketCategoryCapture, key); dErr != nil {
			cs.log.Warn("failed to clean up photo after create failure", "key", key, "error", dErr)
		}
		return nil, fmt.Errorf("failed to create capture: %w", err)
	}

	cs.log.Info("capture created", "capture_id", capture.ID, "owner_user_id", ownerID)
	return capture, nil
}

// getOwned loads a capture and hides other owners' rows behind not found.
func (cs *captureService) getOwned(dbc dbctx.Context, ownerID, id uuid.UUID) (*types.Capture, error) {
	found, err := cs.captureRepo.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch capture: %w", err)
	}
	if len(found) == 0 || found[0].OwnerUserID != ownerID {
		return nil, apierr.NotFound("capture_not_found", fmt.Errorf("capture %s does not exist", id))
	}
	return &found[0], nil
}

func (cs *captureService) Get(ctx context.Context, id uuid.UUID) (*types.Capture, error) {
	ownerID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	return cs.getOwned(dbctx.New(ctx), ownerID, id)
}

func (cs *captureService) List(ctx context.Context, limit, offset int) ([]types.Capture, int64, error) {
	ownerID, err := callerID(ctx)
	if err != nil {
		return nil, 0, err
	}
	dbc := dbctx.New(ctx)
	list, err := cs.captureRepo.ListByOwner(dbc, ownerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list captures: %w", err)
	}
	total, err := cs.captureRepo.CountByOwner(dbc, ownerID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count captures: %w", err)
	}
	return list, total, nil
}

func (cs *captureService) Update(ctx context.Context, id uuid.UUID, input CaptureInput) (*types.Capture, error) {
	ownerID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	if _, err := cs.getOwned(dbc, ownerID, id); err != nil {
		return nil, err
	}
	if input.SpeciesID != nil {
		if err := cs.checkSpeciesExists(dbc, *input.SpeciesID); err != nil {
			return nil, err
		}
	}

	updates := map[string]interface{}{
		"species_id": input.SpeciesID,
		"notes":      strings.TrimSpace(input.Notes),
		"location":   strings.TrimSpace(input.Location),
	}
	if input.CapturedAt != nil && !input.CapturedAt.IsZero() {
		updates["captured_at"] = *input.CapturedAt
	}
	if err := cs.captureRepo.UpdateFields(dbc, id, updates); err != nil {
		return nil, fmt.Errorf("failed to update capture: %w", err)
	}
	return cs.getOwned(dbc, ownerID, id)
}

func (cs *captureService) Delete(ctx context.Context, id uuid.UUID) error {
	ownerID, err := callerID(ctx)
	if err != nil {
		return err
	}
	dbc := dbctx.New(ctx)
	capture, err := cs.getOwned(dbc, ownerID, id)
	if err != nil {
		return err
	}
	if err := cs.captureRepo.SoftDelete(dbc, id); err != nil {
		return fmt.Errorf("failed to delete capture: %w", err)
	}
	if cs.bucketService != nil && capture.PhotoBucketKey != "" {
		if dErr := cs.bucketService.DeleteFile(dbc, gcp.BucketCategoryCapture, capture.PhotoBucketKey); dErr != nil {
			cs.log.Warn("failed to delete capture photo (ignored)", "key", capture.PhotoBucketKey, "error", dErr)
		}
	}
	return nil
}

func (cs *captureService) checkSpeciesExists(dbc dbctx.Context, speciesID uuid.UUID) error {
	found, err := cs.speciesRepo.GetByIDs(dbc, []uuid.UUID{speciesID})
	if err != nil {
		return fmt.Errorf("failed to check species: %w", err)
	}
	if len(found) == 0 {
		return apierr.BadRequest("unknown_species", fmt.Errorf("species %s does not exist", speciesID))
	}
	return nil
}
