package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/aquasync-backend/internal/http/handlers"
	httpMW "github.com/yungbote/aquasync-backend/internal/http/middleware"
	"github.com/yungbote/aquasync-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler  *httpH.HealthHandler
	AuthHandler    *httpH.AuthHandler
	UserHandler    *httpH.UserHandler
	SpeciesHandler *httpH.SpeciesHandler
	CompatHandler  *httpH.CompatHandler
	CaptureHandler *httpH.CaptureHandler
	DatasetHandler *httpH.DatasetHandler
	MatrixHandler  *httpH.MatrixHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.CORS())
	// otelgin must run before AttachTraceContext so the span fallback sees a
	// live span when no trace headers arrived.
	r.Use(otelgin.Middleware("aquasync-backend"))
	r.Use(httpMW.AttachTraceContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/health", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")

	// Auth (public)
	if cfg.AuthHandler != nil {
		auth := api.Group("/auth")
		auth.POST("/register", cfg.AuthHandler.Register)
		auth.POST("/login", cfg.AuthHandler.Login)
		auth.POST("/refresh", cfg.AuthHandler.Refresh)
		auth.POST("/password-reset/request", cfg.AuthHandler.RequestPasswordReset)
		auth.POST("/password-reset/confirm", cfg.AuthHandler.ConfirmPasswordReset)
	}

	protected := api.Group("/")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}
	{
		// Logout revokes the presented token, so it lives behind RequireAuth.
		if cfg.AuthHandler != nil {
			protected.POST("/auth/logout", cfg.AuthHandler.Logout)
		}

		if cfg.UserHandler != nil {
			protected.GET("/users/me", cfg.UserHandler.GetMe)
			protected.PATCH("/users/me", cfg.UserHandler.ChangeName)
			protected.POST("/users/me/avatar", cfg.UserHandler.UploadAvatar)
			protected.POST("/users/me/onboarding/complete", cfg.UserHandler.CompleteOnboarding)
			protected.PATCH("/users/me/plan", cfg.UserHandler.ChangePlan)
		}

		if cfg.SpeciesHandler != nil {
			protected.GET("/species", cfg.SpeciesHandler.List)
			protected.GET("/species/:id", cfg.SpeciesHandler.Get)
		}

		if cfg.CompatHandler != nil {
			protected.GET("/species/:id/tankmates", cfg.CompatHandler.Tankmates)
			protected.GET("/compatibility", cfg.CompatHandler.VerdictByPair)
		}

		if cfg.CaptureHandler != nil {
			protected.POST("/captures", cfg.CaptureHandler.Create)
			protected.GET("/captures", cfg.CaptureHandler.List)
			protected.GET("/captures/:id", cfg.CaptureHandler.Get)
			protected.PATCH("/captures/:id", cfg.CaptureHandler.Update)
			protected.DELETE("/captures/:id", cfg.CaptureHandler.Delete)
		}
	}

	admin := api.Group("/admin")
	if cfg.AuthMiddleware != nil {
		admin.Use(cfg.AuthMiddleware.RequireAuth(), cfg.AuthMiddleware.RequireAdmin())
	}
	{
		if cfg.SpeciesHandler != nil {
			admin.POST("/species", cfg.SpeciesHandler.Create)
			admin.PUT("/species/:id", cfg.SpeciesHandler.Update)
			admin.DELETE("/species/:id", cfg.SpeciesHandler.Delete)
			admin.POST("/species/:id/image", cfg.SpeciesHandler.UploadImage)
			// A sibling collection, not "/species/card-render": a static
			// segment beside the ":id" wildcard would panic at registration.
			admin.POST("/card-renders", cfg.SpeciesHandler.EnqueueCardRender)
		}

		if cfg.DatasetHandler != nil {
			admin.POST("/datasets", cfg.DatasetHandler.Create)
			admin.GET("/datasets", cfg.DatasetHandler.List)
			admin.GET("/datasets/:id", cfg.DatasetHandler.Get)
			admin.PATCH("/datasets/:id/status", cfg.DatasetHandler.UpdateStatus)
			admin.DELETE("/datasets/:id", cfg.DatasetHandler.Delete)
			admin.POST("/datasets/:id/images", cfg.DatasetHandler.AddImageDirect)
			admin.POST("/datasets/:id/images/from-capture", cfg.DatasetHandler.AddImageFromCapture)
			admin.GET("/datasets/:id/images", cfg.DatasetHandler.ListImages)
			admin.DELETE("/datasets/:id/images/:image_id", cfg.DatasetHandler.RemoveImage)
		}

		if cfg.MatrixHandler != nil {
			admin.POST("/matrix-runs", cfg.MatrixHandler.Trigger)
			admin.GET("/matrix-runs", cfg.MatrixHandler.Runs)
			admin.GET("/matrix-runs/:id", cfg.MatrixHandler.Run)
			admin.GET("/matrix-report", cfg.MatrixHandler.LatestReport)
		}

		if cfg.UserHandler != nil {
			admin.GET("/users", cfg.UserHandler.List)
		}
	}

	return r
}
