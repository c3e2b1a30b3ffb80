package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/aquasync-backend/internal/compat"
	"github.com/yungbote/aquasync-backend/internal/jobs/pipeline/compat_matrix_build"
	"github.com/yungbote/aquasync-backend/internal/jobs/pipeline/species_card_render"
	jobruntime "github.com/yungbote/aquasync-backend/internal/jobs/runtime"
	"github.com/yungbote/aquasync-backend/internal/jobs/worker"
	"github.com/yungbote/aquasync-backend/internal/platform/logger"
	"github.com/yungbote/aquasync-backend/internal/services"
)

type Services struct {
	Avatar      services.AvatarService
	Email       services.EmailService
	Auth        services.AuthService
	User        services.UserService
	SpeciesCard services.SpeciesCardService
	Species     services.SpeciesService
	Compat      services.CompatService
	Capture     services.CaptureService
	Dataset     services.DatasetService
	Matrix      services.MatrixService

	JobNotifier services.JobNotifier
	JobRegistry *jobruntime.Registry
	JobWorker   *worker.Worker
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	avatarService := services.NewAvatarService(log, clients.GcpBucket)
	emailService := services.NewEmailService(log, clients.Mailer)

	authService := services.NewAuthService(
		db, log,
		repos.User,
		repos.UserToken,
		repos.PasswordReset,
		avatarService,
		emailService,
		cfg.Auth,
	)

	jobNotifier := services.NewJobNotifier(log, clients.Redis)

	userService := services.NewUserService(db, log, repos.User, avatarService)
	cardService := services.NewSpeciesCardService(log, repos.Species, clients.GcpBucket)
	speciesService := services.NewSpeciesService(db, log, repos.Species, repos.JobRun, clients.GcpBucket, jobNotifier)
	compatService := services.NewCompatService(log, repos.Species, repos.Verdict, repos.Recommendation)
	captureService := services.NewCaptureService(db, log, repos.Capture, repos.Species, clients.GcpBucket)
	datasetService := services.NewDatasetService(db, log, repos.Dataset, repos.Capture, repos.Species, clients.GcpBucket)
	matrixService := services.NewMatrixService(log, repos.JobRun, jobNotifier)

	scorer, err := compat.DefaultRuleScorer()
	if err != nil {
		return Services{}, fmt.Errorf("load compatibility ruleset: %w", err)
	}

	jobRegistry := jobruntime.NewRegistry()

	matrixBuild := compat_matrix_build.New(
		db, log,
		repos.Species,
		repos.Verdict,
		repos.Recommendation,
		scorer,
		clients.Redis,
	)
	if err := jobRegistry.Register(matrixBuild); err != nil {
		return Services{}, err
	}

	cardRender := species_card_render.New(db, log, repos.Species, cardService)
	if err := jobRegistry.Register(cardRender); err != nil {
		return Services{}, err
	}

	var jobWorker *worker.Worker
	if cfg.RunWorker {
		jobWorker = worker.NewWorker(db, log, repos.JobRun, jobRegistry, jobNotifier)
	}

	return Services{
		Avatar:      avatarService,
		Email:       emailService,
		Auth:        authService,
		User:        userService,
		SpeciesCard: cardService,
		Species:     speciesService,
		Compat:      compatService,
		Capture:     captureService,
		Dataset:     datasetService,
		Matrix:      matrixService,
		JobNotifier: jobNotifier,
		JobRegistry: jobRegistry,
		JobWorker:   jobWorker,
	}, nil
}
