package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/aquasync-backend/internal/data/repos/auth"
	"github.com/yungbote/aquasync-backend/internal/data/repos/captures"
	"github.com/yungbote/aquasync-backend/internal/data/repos/compat"
	"github.com/yungbote/aquasync-backend/internal/data/repos/datasets"
	"github.com/yungbote/aquasync-backend/internal/data/repos/jobs"
	"github.com/yungbote/aquasync-backend/internal/data/repos/species"
	"github.com/yungbote/aquasync-backend/internal/data/repos/user"
	"github.com/yungbote/aquasync-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type UserTokenRepo = auth.UserTokenRepo
type PasswordResetTokenRepo = auth.PasswordResetTokenRepo

type SpeciesRepo = species.SpeciesRepo

type VerdictRepo = compat.VerdictRepo
type RecommendationRepo = compat.RecommendationRepo

type CaptureRepo = captures.CaptureRepo
type DatasetRepo = datasets.DatasetRepo

type JobRunRepo = jobs.JobRunRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }
func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, baseLog)
}
func NewPasswordResetTokenRepo(db *gorm.DB, baseLog *logger.Logger) PasswordResetTokenRepo {
	return auth.NewPasswordResetTokenRepo(db, baseLog)
}

func NewSpeciesRepo(db *gorm.DB, baseLog *logger.Logger) SpeciesRepo {
	return species.NewSpeciesRepo(db, baseLog)
}

func NewVerdictRepo(db *gorm.DB, baseLog *logger.Logger) VerdictRepo {
	return compat.NewVerdictRepo(db, baseLog)
}
func NewRecommendationRepo(db *gorm.DB, baseLog *logger.Logger) RecommendationRepo {
	return compat.NewRecommendationRepo(db, baseLog)
}

func NewCaptureRepo(db *gorm.DB, baseLog *logger.Logger) CaptureRepo {
	return captures.NewCaptureRepo(db, baseLog)
}
func NewDatasetRepo(db *gorm.DB, baseLog *logger.Logger) DatasetRepo {
	return datasets.NewDatasetRepo(db, baseLog)
}

func NewJobRunRepo(db *gorm.DB, baseLog *logger.Logger) JobRunRepo {
	return jobs.NewJobRunRepo(db, baseLog)
}
