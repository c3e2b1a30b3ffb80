package services

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/aquasync-backend/internal/data/repos"
	types "github.com/yungbote/aquasync-backend/internal/domain"
	"github.com/yungbote/aquasync-backend/internal/pkg/dbctx"
	"github.com/yungbote/aquasync-backend/internal/platform/apierr"
	"github.com/yungbote/aquasync-backend/internal/platform/gcp"
	"github.com/yungbote/aquasync-backend/internal/platform/logger"
)

// DatasetDetail is the dataset plus its image tallies, the shape the admin UI
// renders on the dataset page.
type DatasetDetail struct {
	Dataset     types.Dataset    `json:"dataset"`
	ImageCount  int64            `json:"image_count"`
	LabelCounts map[string]int64 `json:"label_counts"`
}

// DatasetService curates labeled image sets for the external identification
// trainer. Only draft datasets accept or drop images.
type DatasetService interface {
	Create(ctx context.Context, name, description string) (*types.Dataset, error)
	Get(ctx context.Context, id uuid.UUID) (*DatasetDetail, error)
	List(ctx context.Context, status string, limit, offset int) ([]types.Dataset, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*types.Dataset, error)
	Delete(ctx context.Context, id uuid.UUID) error

	AddImageFromCapture(ctx context.Context, datasetID, captureID uuid.UUID, label string) (*types.DatasetImage, error)
	AddImageDirect(ctx context.Context, datasetID uuid.UUID, label, filename string, raw []byte) (*types.DatasetImage, error)
	ListImages(ctx context.Context, datasetID uuid.UUID, limit, offset int) ([]types.DatasetImage, int64, error)
	RemoveImage(ctx context.Context, datasetID, imageID uuid.UUID) error
}

type datasetService struct {
	db            *gorm.DB
	log           *logger.Logger
	datasetRepo   repos.DatasetRepo
	captureRepo   repos.CaptureRepo
	speciesRepo   repos.SpeciesRepo
	bucketService gcp.BucketService
}

func NewDatasetService(
	db *gorm.DB,
	log *logger.Logger,
	datasetRepo repos.DatasetRepo,
	captureRepo repos.CaptureRepo,
	speciesRepo repos.SpeciesRepo,
	bucketService gcp.BucketService,
) DatasetService {
	return &datasetService{
		db:            db,
		log:           log.With("service", "DatasetService"),
		datasetRepo:   datasetRepo,
		captureRepo:   captureRepo,
		speciesRepo:   speciesRepo,
		bucketService: bucketService,
	}
}

var validDatasetStatuses = map[string]struct{}{
	types.DatasetStatusDraft:    {},
	types.DatasetStatusReady:    {},
	types.DatasetStatusArchived: {},
}

func (ds *datasetService) Create(ctx context.Context, name, description string) (*types.Dataset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apierr.BadRequest("invalid_dataset", fmt.Errorf("name is required"))
	}
	dbc := dbctx.New(ctx)
	existing, err := ds.datasetRepo.GetByName(dbc, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check dataset name: %w", err)
	}
	if existing != nil {
		return nil, apierr.Conflict("dataset_name_taken", fmt.Errorf("dataset %q already exists", name))
	}

	dataset := &types.Dataset{
		ID:          uuid.New(),
		Name:        name,
		Description: strings.TrimSpace(description),
		Status:      types.DatasetStatusDraft,
	}
	if err := ds.datasetRepo.Create(dbc, dataset); err != nil {
		return nil, fmt.Errorf("failed to create dataset: %w", err)
	}
	ds.log.Info("dataset created", "dataset_id", dataset.ID, "name", dataset.Name)
	return dataset, nil
}

func (ds *datasetService) getDataset(dbc dbctx.Context, id uuid.UUID) (*types.Dataset, error) {
	found, err := ds.datasetRepo.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dataset: %w", err)
	}
	if len(found) == 0 {
		return nil, apierr.NotFound("dataset_not_found", fmt.Errorf("dataset %s does not exist", id))
	}
	return &found[0], nil
}

func (ds *datasetService) Get(ctx context.Context, id uuid.UUID) (*DatasetDetail, error) {
	dbc := dbctx.New(ctx)
	dataset, err := ds.getDataset(dbc, id)
	if err != nil {
		return nil, err
	}
	count, err := ds.datasetRepo.CountImages(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count dataset images: %w", err)
	}
	labels, err := ds.datasetRepo.CountImagesByLabel(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count dataset labels: %w", err)
	}
	return &DatasetDetail{Dataset: *dataset, ImageCount: count, LabelCounts: labels}, nil
}

func (ds *datasetService) List(ctx context.Context, status string, limit, offset int) ([]types.Dataset, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != "" {
		if _, ok := validDatasetStatuses[status]; !ok {
			return nil, apierr.BadRequest("invalid_status", fmt.Errorf("unknown dataset status %q", status))
		}
	}
	return ds.datasetRepo.List(dbctx.New(ctx), status, limit, offset)
}

func (ds *datasetService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*types.Dataset, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if _, ok := validDatasetStatuses[status]; !ok {
		return nil, apierr.BadRequest("invalid_status", fmt.Errorf("unknown dataset status %q", status))
	}
	dbc := dbctx.New(ctx)
	if _, err := ds.getDataset(dbc, id); err != nil {
		return nil, err
	}
	if status == types.DatasetStatusReady {
		count, err := ds.datasetRepo.CountImages(dbc, id)
		if err != nil {
			return nil, fmt.Errorf("failed to count dataset images: %w", err)
		}
		if count == 0 {
			return nil, apierr.BadRequest("dataset_empty", fmt.Errorf("a dataset needs images before it is ready"))
		}
	}
	if err := ds.datasetRepo.UpdateStatus(dbc, id, status); err != nil {
		return nil, fmt.Errorf("failed to update dataset status: %w", err)
	}
	return ds.getDataset(dbc, id)
}

func (ds *datasetService) Delete(ctx context.Context, id uuid.UUID) error {
	dbc := dbctx.New(ctx)
	dataset, err := ds.getDataset(dbc, id)
	if err != nil {
		return err
	}
	if err := ds.datasetRepo.SoftDelete(dbc, id); err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}
	if ds.bucketService != nil {
		prefix := datasetKeyPrefix(id)
		if pErr := ds.bucketService.DeletePrefix(ctx, gcp.BucketCategoryDataset, prefix); pErr != nil {
			ds.log.Warn("failed to delete dataset objects (ignored)", "prefix", prefix, "error", pErr)
		}
	}
	ds.log.Info("dataset deleted", "dataset_id", id, "name", dataset.Name)
	return nil
}

// requireEditable loads the dataset and rejects image writes on non-drafts.
func (ds *datasetService) requireEditable(dbc dbctx.Context, id uuid.UUID) (*types.Dataset, error) {
	dataset, err := ds.getDataset(dbc, id)
	if err != nil {
		return nil, err
	}
	if dataset.Status != types.DatasetStatusDraft {
		return nil, apierr.Conflict("dataset_not_editable", fmt.Errorf("dataset %s is %s", id, dataset.Status))
	}
	return dataset, nil
}

func (ds *datasetService) AddImageFromCapture(ctx context.Context, datasetID, captureID uuid.UUID, label string) (*types.DatasetImage, error) {
	dbc := dbctx.New(ctx)
	if _, err := ds.requireEditable(dbc, datasetID); err != nil {
		return nil, err
	}
	captures, err := ds.captureRepo.GetByIDs(dbc, []uuid.UUID{captureID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch capture: %w", err)
	}
	if len(captures) == 0 {
		return nil, apierr.NotFound("capture_not_found", fmt.Errorf("capture %s does not exist", captureID))
	}
	capture := captures[0]

	label, speciesID, err := ds.resolveLabel(dbc, label, capture.SpeciesID)
	if err != nil {
		return nil, err
	}
	if ds.bucketService == nil {
		return nil, fmt.Errorf("dataset storage not configured")
	}

	imageID := uuid.New()
	dstKey := datasetKeyPrefix(datasetID) + imageID.String() + filepath.Ext(capture.PhotoBucketKey)
	// Promoting a capture never moves the source object; the hobbyist keeps it.
	if err := ds.bucketService.CopyObject(ctx, gcp.BucketCategoryCapture, capture.PhotoBucketKey, gcp.BucketCategoryDataset, dstKey); err != nil {
		return nil, fmt.Errorf("failed to copy capture photo into dataset: %w", err)
	}

	image := &types.DatasetImage{
		ID:              imageID,
		DatasetID:       datasetID,
		SpeciesID:       speciesID,
		SourceCaptureID: &capture.ID,
		BucketKey:       dstKey,
		URL:             ds.bucketService.GetPublicURL(gcp.BucketCategoryDataset, dstKey),
		Label:           label,
	}
	if err := ds.datasetRepo.AddImages(dbc, []*types.DatasetImage{image}); err != nil {
		if dErr := ds.bucketService.DeleteFile(dbc, gcp.BucketCategoryDataset, dstKey); dErr != nil {
			ds.log.Warn("failed to clean up copied object after insert failure", "key", dstKey, "error", dErr)
		}
		return nil, fmt.Errorf("failed to record dataset image: %w", err)
	}
	return image, nil
}

func (ds *datasetService) AddImageDirect(ctx context.Context, datasetID uuid.UUID, label, filename string, raw []byte) (*types.DatasetImage, error) {
	if len(raw) == 0 {
		return nil, apierr.BadRequest("empty_file", fmt.Errorf("image file is empty"))
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := validImageExtensions[ext]; !ok {
		return nil, apierr.BadRequest("unsupported_image_type", fmt.Errorf("extension %q not supported", ext))
	}

	dbc := dbctx.New(ctx)
	if _, err := ds.requireEditable(dbc, datasetID); err != nil {
		return nil, err
	}
	label, speciesID, err := ds.resolveLabel(dbc, label, nil)
	if err != nil {
		return nil, err
	}
	if ds.bucketService == nil {
		return nil, fmt.Errorf("dataset storage not configured")
	}

	imageID := uuid.New()
	key := datasetKeyPrefix(datasetID) + imageID.String() + ext
	if err := ds.bucketService.UploadFile(dbc, gcp.BucketCategoryDataset, key, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("failed to upload dataset image: %w", err)
	}

	image := &types.DatasetImage{
		ID:        imageID,
		DatasetID: datasetID,
		SpeciesID: speciesID,
		BucketKey: key,
		URL:       ds.bucketService.GetPublicURL(gcp.BucketCategoryDataset, key),
		Label:     label,
	}
	if err := ds.datasetRepo.AddImages(dbc, []*types.DatasetImage{image}); err != nil {
		if dErr := ds.bucketService.DeleteFile(dbc, gcp.BucketCategoryDataset, key); dErr != nil {
			ds.log.Warn("failed to clean up object after insert failure", "key", key, "error", dErr)
		}
		return nil, fmt.Errorf("failed to record dataset image: %w", err)
	}
	return image, nil
}

func (ds *datasetService) ListImages(ctx context.Context, datasetID uuid.UUID, limit, offset int) ([]types.DatasetImage, int64, error) {
	dbc := dbctx.New(ctx)
	if _, err := ds.getDataset(dbc, datasetID); err != nil {
		return nil, 0, err
	}
	images, err := ds.datasetRepo.ListImages(dbc, datasetID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list dataset images: %w", err)
	}
	total, err := ds.datasetRepo.CountImages(dbc, datasetID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count dataset images: %w", err)
	}
	return images, total, nil
}

func (ds *datasetService) RemoveImage(ctx context.Context, datasetID, imageID uuid.UUID) error {
	dbc := dbctx.New(ctx)
	if _, err := ds.requireEditable(dbc, datasetID); err != nil {
		return err
	}
	image, err := ds.datasetRepo.GetImage(dbc, imageID)
	if err != nil {
		return fmt.Errorf("failed to fetch dataset image: %w", err)
	}
	if image == nil || image.DatasetID != datasetID {
		return apierr.NotFound("image_not_found", fmt.Errorf("image %s not in dataset %s", imageID, datasetID))
	}
	if err := ds.datasetRepo.DeleteImage(dbc, imageID); err != nil {
		return fmt.Errorf("failed to delete dataset image: %w", err)
	}
	if ds.bucketService != nil && image.BucketKey != "" {
		if dErr := ds.bucketService.DeleteFile(dbc, gcp.BucketCategoryDataset, image.BucketKey); dErr != nil {
			ds.log.Warn("failed to delete image object (ignored)", "key", image.BucketKey, "error", dErr)
		}
	}
	return nil
}

// resolveLabel settles the training label. An explicit label wins; otherwise
// the capture's identified species names it. When the label matches a catalog
// species the image links to it as well.
func (ds *datasetService) resolveLabel(dbc dbctx.Context, label string, captureSpeciesID *uuid.UUID) (string, *uuid.UUID, error) {
	label = strings.TrimSpace(label)
	if label == "" && captureSpeciesID != nil {
		found, err := ds.speciesRepo.GetByIDs(dbc, []uuid.UUID{*captureSpeciesID})
		if err != nil {
			return "", nil, fmt.Errorf("failed to resolve capture species: %w", err)
		}
		if len(found) > 0 {
			return found[0].Name, captureSpeciesID, nil
		}
	}
	if label == "" {
		return "", nil, apierr.BadRequest("label_required", fmt.Errorf("a label or an identified capture is required"))
	}
	sp, err := ds.speciesRepo.GetByName(dbc, label)
	if err != nil {
		return "", nil, fmt.Errorf("failed to match label to species: %w", err)
	}
	if sp != nil {
		return sp.Name, &sp.ID, nil
	}
	return label, captureSpeciesID, nil
}

func datasetKeyPrefix(datasetID uuid.UUID) string {
	return fmt.Sprintf("dataset/%s/", datasetID.String())
}
