package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/aquasync-backend/internal/platform/logger"
)

// JobEvent is the pub/sub notification emitted as a job run progresses. The
// worker publishes one per status or stage change; the API process subscribes
// and mirrors them into its own log so both halves of a split deployment can
// be tailed from one place.
type JobEvent struct {
	JobID    uuid.UUID `json:"job_id"`
	JobType  string    `json:"job_type"`
	Status   string    `json:"status"`
	Stage    string    `json:"stage,omitempty"`
	Progress float64   `json:"progress"`
	Message  string    `json:"message,omitempty"`
	Error    string    `json:"error,omitempty"`
	At       time.Time `json:"at"`
}

type Client interface {
	Publish(ctx context.Context, ev JobEvent) error
	StartForwarder(ctx context.Context, onEvent func(ev JobEvent)) error
	AcquireRunLock(ctx context.Context, name string, ttl time.Duration) (string, bool, error)
	ExtendRunLock(ctx context.Context, name, token string, ttl time.Duration) error
	ReleaseRunLock(ctx context.Context, name, token string) error
	Close() error
}

type client struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func New(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ch := strings.TrimSpace(os.Getenv("REDIS_CHANNEL"))
	if ch == "" {
		ch = "job_events"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &client{
		log:     log.With("client", "RedisClient"),
		rdb:     rdb,
		channel: ch,
	}, nil
}

func (c *client) Publish(ctx context.Context, ev JobEvent) error {
	if c == nil || c.rdb == nil {
		return fmt.Errorf("redis client not initialized")
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return c.rdb.Publish(ctx, c.channel, raw).Err()
}

// StartForwarder subscribes to the job event channel and invokes onEvent for
// every well-formed message until ctx is canceled.
func (c *client) StartForwarder(ctx context.Context, onEvent func(ev JobEvent)) error {
	if c == nil || c.rdb == nil {
		return fmt.Errorf("redis client not initialized")
	}
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}

	sub := c.rdb.Subscribe(ctx, c.channel)

	// confirms the subscription actually started
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				var ev JobEvent
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					c.log.Warn("bad job event payload", "error", err)
					continue
				}
				onEvent(ev)
			}
		}
	}()

	return nil
}

func (c *client) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
