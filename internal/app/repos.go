package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/aquasync-backend/internal/data/repos"
	"github.com/yungbote/aquasync-backend/internal/platform/logger"
)

type Repos struct {
	User           repos.UserRepo
	UserToken      repos.UserTokenRepo
	PasswordReset  repos.PasswordResetTokenRepo
	Species        repos.SpeciesRepo
	Verdict        repos.VerdictRepo
	Recommendation repos.RecommendationRepo
	Capture        repos.CaptureRepo
	Dataset        repos.DatasetRepo
	JobRun         repos.JobRunRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:           repos.NewUserRepo(db, log),
		UserToken:      repos.NewUserTokenRepo(db, log),
		PasswordReset:  repos.NewPasswordResetTokenRepo(db, log),
		Species:        repos.NewSpeciesRepo(db, log),
		Verdict:        repos.NewVerdictRepo(db, log),
		Recommendation: repos.NewRecommendationRepo(db, log),
		Capture:        repos.NewCaptureRepo(db, log),
		Dataset:        repos.NewDatasetRepo(db, log),
		JobRun:         repos.NewJobRunRepo(db, log),
	}
}
