package app

import (
	"github.com/yungbote/aquasync-backend/internal/http"
	httpH "github.com/yungbote/aquasync-backend/internal/http/handlers"
	httpMW "github.com/yungbote/aquasync-backend/internal/http/middleware"
	"github.com/yungbote/aquasync-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health  *httpH.HealthHandler
	Auth    *httpH.AuthHandler
	User    *httpH.UserHandler
	Species *httpH.SpeciesHandler
	Compat  *httpH.CompatHandler
	Capture *httpH.CaptureHandler
	Dataset *httpH.DatasetHandler
	Matrix  *httpH.MatrixHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:  httpH.NewHealthHandler(),
		Auth:    httpH.NewAuthHandler(services.Auth),
		User:    httpH.NewUserHandler(services.User),
		Species: httpH.NewSpeciesHandler(services.Species),
		Compat:  httpH.NewCompatHandler(services.Compat),
		Capture: httpH.NewCaptureHandler(services.Capture),
		Dataset: httpH.NewDatasetHandler(services.Dataset),
		Matrix:  httpH.NewMatrixHandler(services.Matrix),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireServer(log *logger.Logger, handlers Handlers, middleware Middleware) *http.Server {
	return http.NewServer(http.RouterConfig{
		Log:            log,
		AuthMiddleware: middleware.Auth,
		HealthHandler:  handlers.Health,
		AuthHandler:    handlers.Auth,
		UserHandler:    handlers.User,
		SpeciesHandler: handlers.Species,
		CompatHandler:  handlers.Compat,
		CaptureHandler: handlers.Capture,
		DatasetHandler: handlers.Dataset,
		MatrixHandler:  handlers.Matrix,
	})
}
