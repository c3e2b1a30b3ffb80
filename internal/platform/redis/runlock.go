package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock key only when it still holds our token, so a
// run that outlived its TTL cannot release a lock some other run now owns.
var releaseScript = goredis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// extendScript refreshes the TTL only while we still hold the lock.
var extendScript = goredis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
end
return 0
`)

func lockKey(name string) string { return "runlock:" + name }

// AcquireRunLock takes the named lock for ttl. It returns the release token
// and whether the lock was won; losing the race is not an error.
func (c *client) AcquireRunLock(ctx context.Context, name string, ttl time.Duration) (string, bool, error) {
	if c == nil || c.rdb == nil {
		return "", false, fmt.Errorf("redis client not initialized")
	}
	token := uuid.NewString()
	ok, err := c.rdb.SetNX(ctx, lockKey(name), token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("acquire run lock %s: %w", name, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// ExtendRunLock pushes the TTL out while the run is still making progress.
// Returns an error if the lock is no longer ours.
func (c *client) ExtendRunLock(ctx context.Context, name, token string, ttl time.Duration) error {
	if c == nil || c.rdb == nil {
		return fmt.Errorf("redis client not initialized")
	}
	n, err := extendScript.Run(ctx, c.rdb, []string{lockKey(name)}, token, ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("extend run lock %s: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("run lock %s no longer held", name)
	}
	return nil
}

func (c *client) ReleaseRunLock(ctx context.Context, name, token string) error {
	if c == nil || c.rdb == nil {
		return fmt.Errorf("redis client not initialized")
	}
	if _, err := releaseScript.Run(ctx, c.rdb, []string{lockKey(name)}, token).Result(); err != nil {
		return fmt.Errorf("release run lock %s: %w", name, err)
	}
	return nil
}
