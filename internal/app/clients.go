package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/yungbote/aquasync-backend/internal/platform/gcp"
	"github.com/yungbote/aquasync-backend/internal/platform/logger"
	"github.com/yungbote/aquasync-backend/internal/platform/redis"
	"github.com/yungbote/aquasync-backend/internal/platform/sendgrid"
)

// Clients holds the external connections. Each one is optional: an unset env
// leaves the client nil and the dependent feature degrades (no job events, no
// uploads, no reset mail) instead of blocking startup.
type Clients struct {
	Redis     redis.Client
	GcpBucket gcp.BucketService
	Mailer    sendgrid.Client
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	var bus redis.Client
	if strings.TrimSpace(os.Getenv("REDIS_ADDR")) != "" {
		b, err := redis.New(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis client: %w", err)
		}
		bus = b
	} else {
		log.Info("REDIS_ADDR not set, job events stay process-local")
	}

	var bucket gcp.BucketService
	if strings.TrimSpace(os.Getenv("AVATAR_GCS_BUCKET_NAME")) != "" {
		b, err := gcp.NewBucketService(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init bucket client: %w", err)
		}
		bucket = b
	} else {
		log.Warn("GCS buckets not configured, uploads disabled")
	}

	var mailer sendgrid.Client
	if strings.TrimSpace(os.Getenv("SENDGRID_API_KEY")) != "" {
		m, err := sendgrid.NewFromEnv(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init sendgrid client: %w", err)
		}
		mailer = m
	} else {
		log.Warn("SENDGRID_API_KEY not set, password reset mail disabled")
	}

	return Clients{
		Redis:     bus,
		GcpBucket: bucket,
		Mailer:    mailer,
	}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
