package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/aquasync-backend/internal/compat"
	"github.com/yungbote/aquasync-backend/internal/data/repos"
	types "github.com/yungbote/aquasync-backend/internal/domain"
	"github.com/yungbote/aquasync-backend/internal/pkg/dbctx"
	"github.com/yungbote/aquasync-backend/internal/platform/apierr"
	"github.com/yungbote/aquasync-backend/internal/platform/logger"
)

// TankmatesView is the species plus its precomputed rollup, decoded for the
// client. ComputedAt dates the matrix run that produced it.
type TankmatesView struct {
	Species         types.Species `json:"species"`
	CompatibleWith  []string      `json:"compatible_with"`
	CompatibleCount int           `json:"compatible_count"`
	ComputedAt      time.Time     `json:"computed_at"`
}

// CompatService serves the precomputed compatibility tables. It never
// evaluates pairs itself; that is the matrix build job's work.
type CompatService interface {
	Tankmates(ctx context.Context, speciesID uuid.UUID) (*TankmatesView, error)
	VerdictByPair(ctx context.Context, nameA, nameB string) (*types.CompatibilityVerdict, error)
}

type compatService struct {
	log                *logger.Logger
	speciesRepo        repos.SpeciesRepo
	verdictRepo        repos.VerdictRepo
	recommendationRepo repos.RecommendationRepo
}

func NewCompatService(
	log *logger.Logger,
	speciesRepo repos.SpeciesRepo,
	verdictRepo repos.VerdictRepo,
	recommendationRepo repos.RecommendationRepo,
) CompatService {
	return &compatService{
		log:                log.With("service", "CompatService"),
		speciesRepo:        speciesRepo,
		verdictRepo:        verdictRepo,
		recommendationRepo: recommendationRepo,
	}
}

func (cs *compatService) Tankmates(ctx context.Context, speciesID uuid.UUID) (*TankmatesView, error) {
	dbc := dbctx.New(ctx)
	found, err := cs.speciesRepo.GetByIDs(dbc, []uuid.UUID{speciesID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch species: %w", err)
	}
	if len(found) == 0 {
		return nil, apierr.NotFound("species_not_found", fmt.Errorf("species %s does not exist", speciesID))
	}
	sp := found[0]

	rec, err := cs.recommendationRepo.GetBySpeciesName(dbc, sp.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recommendation: %w", err)
	}
	if rec == nil {
		// Species added after the last run: distinct from "zero tankmates".
		return nil, apierr.NotFound("tankmates_not_computed", fmt.Errorf("no matrix run has covered %q yet", sp.Name))
	}

	names := []string{}
	if len(rec.CompatibleWith) > 0 {
		if uErr := json.Unmarshal(rec.CompatibleWith, &names); uErr != nil {
			cs.log.Warn("malformed compatible_with payload", "species", sp.Name, "error", uErr)
			names = []string{}
		}
	}

	return &TankmatesView{
		Species:         sp,
		CompatibleWith:  names,
		CompatibleCount: rec.CompatibleCount,
		ComputedAt:      rec.ComputedAt,
	}, nil
}

func (cs *compatService) VerdictByPair(ctx context.Context, nameA, nameB string) (*types.CompatibilityVerdict, error) {
	nameA = strings.TrimSpace(nameA)
	nameB = strings.TrimSpace(nameB)
	if nameA == "" || nameB == "" {
		return nil, apierr.BadRequest("missing_species", fmt.Errorf("both species names are required"))
	}
	lo, hi := compat.CanonicalPair(nameA, nameB)
	if lo == hi {
		return nil, apierr.BadRequest("same_species", fmt.Errorf("a pair needs two distinct species"))
	}

	dbc := dbctx.New(ctx)
	for _, name := range []string{lo, hi} {
		exists, err := cs.speciesRepo.NameExists(dbc, name)
		if err != nil {
			return nil, fmt.Errorf("failed to check species %q: %w", name, err)
		}
		if !exists {
			return nil, apierr.NotFound("species_not_found", fmt.Errorf("species %q does not exist", name))
		}
	}

	verdict, err := cs.verdictRepo.GetByPair(dbc, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch verdict: %w", err)
	}
	if verdict == nil {
		return nil, apierr.NotFound("verdict_not_found", fmt.Errorf("no verdict computed for %q and %q", lo, hi))
	}
	return verdict, nil
}
