package status

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const (
	redisCacheKey      = "gfxtab:status:recent"
	redisGenerationKey = "gfxtab:status:generation"
)

// setIfGeneration writes one cached limit only while the generation counter
// still matches, so the check and the write are atomic against INCR.
var setIfGeneration = redis.NewScript(`
local gen = redis.call('GET', KEYS[1]) or '0'
if gen ~= ARGV[1] then
	return 0
end
redis.call('HSET', KEYS[2], ARGV[2], ARGV[3])
redis.call('PEXPIRE', KEYS[2], ARGV[4])
return 1
`)

// RedisCache shares ListRecent results between instances. All cached limits
// live in one hash so a single DEL invalidates them together. The generation
// counter lives next to it, so a write on one instance fences stale reads on
// every other instance.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, limit int) ([]*StatusCheck, bool) {
	data, err := c.client.HGet(ctx, redisCacheKey, strconv.Itoa(limit)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("status cache get", "error", err)
		}
		return nil, false
	}

	var checks []*StatusCheck
	if err := json.Unmarshal(data, &checks); err != nil {
		slog.Warn("status cache decode", "error", err)
		return nil, false
	}
	return checks, true
}

func (c *RedisCache) Generation(ctx context.Context) (uint64, bool) {
	gen, err := c.client.Get(ctx, redisGenerationKey).Uint64()
	switch {
	case errors.Is(err, redis.Nil):
		return 0, true
	case err != nil:
		slog.Warn("status cache generation", "error", err)
		return 0, false
	}
	return gen, true
}

func (c *RedisCache) Set(ctx context.Context, gen uint64, limit int, checks []*StatusCheck) {
	data, err := json.Marshal(checks)
	if err != nil {
		slog.Warn("status cache encode", "error", err)
		return
	}

	keys := []string{redisGenerationKey, redisCacheKey}
	args := []any{strconv.FormatUint(gen, 10), strconv.Itoa(limit), data, c.ttl.Milliseconds()}
	if err := setIfGeneration.Run(ctx, c.client, keys, args...).Err(); err != nil {
		slog.Warn("status cache set", "error", err)
	}
}

func (c *RedisCache) Invalidate(ctx context.Context) {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, redisGenerationKey)
		pipe.Del(ctx, redisCacheKey)
		return nil
	})
	if err != nil {
		slog.Warn("status cache invalidate", "error", err)
	}
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
