package services

import (
	"bytes"
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"github.com/google/uuid"

	"github.com/yungbote/aquasync-backend/internal/data/repos"
	types "github.com/yungbote/aquasync-backend/internal/domain"
	"github.com/yungbote/aquasync-backend/internal/pkg/dbctx"
	"github.com/yungbote/aquasync-backend/internal/platform/gcp"
	"github.com/yungbote/aquasync-backend/internal/platform/logger"
)

// SpeciesCardService renders placeholder cards for species that have no
// photograph yet. Cards are deterministic per species name so re-renders
// produce the same artwork.
type SpeciesCardService interface {
	RenderAndUploadCard(dbc dbctx.Context, species *types.Species) error
	GenerateCard(species *types.Species) (bytes.Buffer, error)
}

type speciesCardService struct {
	log           *logger.Logger
	speciesRepo   repos.SpeciesRepo
	bucketService gcp.BucketService
	font          *fontLoader
}

func NewSpeciesCardService(log *logger.Logger, speciesRepo repos.SpeciesRepo, bucketService gcp.BucketService) SpeciesCardService {
	return &speciesCardService{
		log:           log.With("service", "SpeciesCardService"),
		speciesRepo:   speciesRepo,
		bucketService: bucketService,
		font:          newFontLoader("CARD_FONT_PATH", 176),
	}
}

func (scs *speciesCardService) RenderAndUploadCard(dbc dbctx.Context, species *types.Species) error {
	if species == nil || species.ID == uuid.Nil {
		return fmt.Errorf("species required")
	}
	if scs.bucketService == nil {
		return fmt.Errorf("card storage not configured")
	}

	buf, err := scs.GenerateCard(species)
	if err != nil {
		return err
	}

	oldKey := strings.TrimSpace(species.CardBucketKey)
	newKey := fmt.Sprintf("species_card/%s/%d.png", species.ID.String(), time.Now().UnixNano())

	if err := scs.bucketService.UploadFile(dbc, gcp.BucketCategorySpecies, newKey, bytes.NewReader(buf.Bytes())); err != nil {
		return fmt.Errorf("failed to upload species card: %w", err)
	}

	cardURL := scs.bucketService.GetPublicURL(gcp.BucketCategorySpecies, newKey)
	if err := scs.speciesRepo.UpdateCardFields(dbc, species.ID, species.CardColor, newKey, cardURL); err != nil {
		return fmt.Errorf("failed to persist card fields: %w", err)
	}
	species.CardBucketKey = newKey
	species.CardURL = cardURL

	if oldKey != "" && oldKey != newKey {
		if err := scs.bucketService.DeleteFile(dbc, gcp.BucketCategorySpecies, oldKey); err != nil {
			scs.log.Warn("failed to delete old species card (ignored)", "old_key", oldKey, "error", err)
		}
	}

	return nil
}

func (scs *speciesCardService) GenerateCard(species *types.Species) (bytes.Buffer, error) {
	const size = 512
	var buf bytes.Buffer
	if species == nil {
		return buf, fmt.Errorf("species required")
	}

	scs.ensureCardColor(species)

	face, err := scs.font.Face()
	if err != nil {
		return buf, fmt.Errorf("card font unavailable: %w", err)
	}

	base, ok := parseHexColor(species.CardColor)
	if !ok {
		base = colorForKey(species.Name)
	}

	dc := gg.NewContext(size, size)
	dc.SetColor(base)
	dc.DrawRectangle(0, 0, float64(size), float64(size))
	dc.Fill()

	// Darker footer band carries the full species name.
	band := color.NRGBA{
		R: uint8(float64(base.R) * 0.6),
		G: uint8(float64(base.G) * 0.6),
		B: uint8(float64(base.B) * 0.6),
		A: 255,
	}
	dc.SetColor(band)
	dc.DrawRectangle(0, float64(size)-96, float64(size), 96)
	dc.Fill()

	initials := cardInitials(species.Name)

	dc.SetFontFace(face)
	tw, th := dc.MeasureString(initials)
	cx := float64(size) / 2
	cy := (float64(size) - 96) / 2

	dc.SetColor(color.White)
	dc.DrawString(initials, cx-(tw/2), cy+(th/2))

	if err := scs.drawName(dc, species.Name, size); err != nil {
		return buf, err
	}

	if err := dc.EncodePNG(&buf); err != nil {
		return buf, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf, nil
}

func (scs *speciesCardService) drawName(dc *gg.Context, name string, size int) error {
	face, err := scs.font.FaceAt(34)
	if err != nil {
		return fmt.Errorf("card font unavailable: %w", err)
	}
	dc.SetFontFace(face)
	dc.SetColor(color.White)

	label := name
	if tw, _ := dc.MeasureString(label); tw > float64(size)-32 {
		for len(label) > 1 {
			label = label[:len(label)-1]
			if tw, _ := dc.MeasureString(label + "…"); tw <= float64(size)-32 {
				break
			}
		}
		label += "…"
	}

	tw, th := dc.MeasureString(label)
	dc.DrawString(label, float64(size)/2-(tw/2), float64(size)-48+(th/2))
	return nil
}

func (scs *speciesCardService) ensureCardColor(species *types.Species) {
	if _, ok := parseHexColor(species.CardColor); ok {
		species.CardColor = strings.ToUpper(species.CardColor)
		if !strings.HasPrefix(species.CardColor, "#") {
			species.CardColor = "#" + species.CardColor
		}
		return
	}
	species.CardColor = nrgbaToHex(colorForKey(species.Name))
}
