package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/aquasync-backend/internal/data/db"
	aqhttp "github.com/yungbote/aquasync-backend/internal/http"
	"github.com/yungbote/aquasync-backend/internal/platform/logger"
	redisclient "github.com/yungbote/aquasync-backend/internal/platform/redis"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *aqhttp.Server
	Cfg      Config
	Repos    Repos
	Services Services
	Clients  Clients
	cancel   context.CancelFunc
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	cfg := LoadConfig(log)
	gin.SetMode(cfg.GinMode)

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	clients, err := wireClients(log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(theDB, log)

	serviceset, err := wireServices(theDB, log, cfg, reposet, clients)
	if err != nil {
		clients.Close()
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, serviceset)
	middleware := wireMiddleware(log, serviceset)
	server := wireServer(log, handlerset, middleware)

	return &App{
		Log:      log,
		DB:       theDB,
		Server:   server,
		Cfg:      cfg,
		Repos:    reposet,
		Services: serviceset,
		Clients:  clients,
	}, nil
}

// Start launches the background halves: the job worker when RUN_WORKER is on,
// and a job-event forwarder that mirrors worker progress into this process's
// log when the API runs apart from the worker.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Services.JobWorker != nil {
		a.Services.JobWorker.Start(ctx)
	}

	if a.Cfg.RunServer && !a.Cfg.RunWorker && a.Clients.Redis != nil {
		go func() {
			err := a.Clients.Redis.StartForwarder(ctx, func(ev redisclient.JobEvent) {
				a.Log.Info("job event",
					"job_id", ev.JobID,
					"job_type", ev.JobType,
					"status", ev.Status,
					"stage", ev.Stage,
					"progress", ev.Progress,
				)
			})
			if err != nil && ctx.Err() == nil {
				a.Log.Warn("job event forwarder stopped", "error", err)
			}
		}()
	}
}

func (a *App) Run(addr string) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Server.Run(addr)
}

// Shutdown drains the HTTP server; background workers stop via Close.
func (a *App) Shutdown(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return nil
	}
	return a.Server.Shutdown(ctx)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.Close()
	if a.Log != nil {
		a.Log.Sync()
	}
}
