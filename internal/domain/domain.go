package domain

import (
	"github.com/yungbote/aquasync-backend/internal/domain/auth"
	"github.com/yungbote/aquasync-backend/internal/domain/captures"
	"github.com/yungbote/aquasync-backend/internal/domain/compat"
	"github.com/yungbote/aquasync-backend/internal/domain/datasets"
	"github.com/yungbote/aquasync-backend/internal/domain/jobs"
	"github.com/yungbote/aquasync-backend/internal/domain/species"
	"github.com/yungbote/aquasync-backend/internal/domain/user"
)

// Aliases so callers can import one package as `types` and reach every model.

type (
	User               = user.User
	UserToken          = auth.UserToken
	PasswordResetToken = auth.PasswordResetToken

	Species = species.Species

	CompatibilityVerdict   = compat.CompatibilityVerdict
	TankmateRecommendation = compat.TankmateRecommendation

	Capture = captures.Capture

	Dataset      = datasets.Dataset
	DatasetImage = datasets.DatasetImage

	JobRun = jobs.JobRun
)

const (
	RoleUser  = user.RoleUser
	RoleAdmin = user.RoleAdmin

	PlanFree    = user.PlanFree
	PlanPremium = user.PlanPremium

	WaterFreshwater = species.WaterFreshwater
	WaterSaltwater  = species.WaterSaltwater
	WaterBrackish   = species.WaterBrackish

	TemperamentPeaceful       = species.TemperamentPeaceful
	TemperamentSemiAggressive = species.TemperamentSemiAggressive
	TemperamentAggressive     = species.TemperamentAggressive

	DietOmnivore  = species.DietOmnivore
	DietCarnivore = species.DietCarnivore
	DietHerbivore = species.DietHerbivore

	LevelCompatible   = compat.LevelCompatible
	LevelConditional  = compat.LevelConditional
	LevelIncompatible = compat.LevelIncompatible

	JobStatusQueued    = jobs.StatusQueued
	JobStatusRunning   = jobs.StatusRunning
	JobStatusSucceeded = jobs.StatusSucceeded
	JobStatusFailed    = jobs.StatusFailed
	JobStatusCanceled  = jobs.StatusCanceled

	JobTypeMatrixBuild       = jobs.TypeMatrixBuild
	JobTypeSpeciesCardRender = jobs.TypeSpeciesCardRender

	DatasetStatusDraft    = datasets.StatusDraft
	DatasetStatusReady    = datasets.StatusReady
	DatasetStatusArchived = datasets.StatusArchived
)

// AllModels is the automigration set, order-stable.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&UserToken{},
		&PasswordResetToken{},
		&Species{},
		&CompatibilityVerdict{},
		&TankmateRecommendation{},
		&Capture{},
		&Dataset{},
		&DatasetImage{},
		&JobRun{},
	}
}
