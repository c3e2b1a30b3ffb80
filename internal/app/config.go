package app

import (
	"time"

	"github.com/yungbote/aquasync-backend/internal/platform/envutil"
	"github.com/yungbote/aquasync-backend/internal/platform/logger"
	"github.com/yungbote/aquasync-backend/internal/services"
)

type Config struct {
	Port    string
	GinMode string

	// Process roles. A single binary can run both; split deployments set one.
	RunServer bool
	RunWorker bool

	Auth services.AuthConfig
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:      envutil.String("PORT", "8080"),
		GinMode:   envutil.String("GIN_MODE", "debug"),
		RunServer: envutil.Bool("RUN_SERVER", true),
		RunWorker: envutil.Bool("RUN_WORKER", true),
		Auth: services.AuthConfig{
			JWTSecret:       envutil.String("JWT_SECRET_KEY", ""),
			AccessTokenTTL:  envutil.Duration("ACCESS_TOKEN_TTL", time.Hour),
			RefreshTokenTTL: envutil.Duration("REFRESH_TOKEN_TTL", 30*24*time.Hour),
			ResetTokenTTL:   envutil.Duration("RESET_TOKEN_TTL", time.Hour),
		},
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = "defaultsecret"
		log.Warn("JWT_SECRET_KEY not set, using insecure default")
	}
	return cfg
}
