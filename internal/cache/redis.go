package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/user-directory/internal/config"
)

const (
	userCountKey           = "users:count"
	userCountGenerationKey = "users:count:generation"
)

// storeCountScript пишет значение, только если поколение не сдвинулось
// после чтения. KEYS: count, generation. ARGV: count, generation, ttl ms.
const storeCountScript = `
local cur = redis.call('GET', KEYS[2])
if (cur or '0') ~= ARGV[2] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[1])
end
return 1
`

// invalidateCountScript сдвигает поколение и удаляет значение атомарно.
const invalidateCountScript = `
redis.call('INCR', KEYS[2])
redis.call('DEL', KEYS[1])
return 1
`

type redisClient interface {
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// RedisCounter caches the total number of users. Every invalidation bumps a
// generation counter, and a value read from storage is stored only if the
// generation it was read under is still current.
type RedisCounter struct {
	client redisClient
	ttl    time.Duration
}

func NewRedisCounter(client redisClient, ttl time.Duration) *RedisCounter {
	return &RedisCounter{client: client, ttl: ttl}
}

// NewRedisClient connects and pings. Callers close the client on shutdown.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Info().Str("addr", cfg.Addr).Msg("Connected to Redis")
	return client, nil
}

// Get returns the cached count and the current generation. On a miss ok is
// false and generation should be passed to Store.
func (c *RedisCounter) Get(ctx context.Context) (count int64, generation int64, ok bool, err error) {
	vals, err := c.client.MGet(ctx, userCountKey, userCountGenerationKey).Result()
	if err != nil {
		return 0, 0, false, fmt.Errorf("cache: failed to get user count: %w", err)
	}
	if len(vals) != 2 {
		return 0, 0, false, fmt.Errorf("cache: unexpected reply length %d", len(vals))
	}

	generation, err = parseInt(vals[1])
	if err != nil {
		return 0, 0, false, fmt.Errorf("cache: bad user count generation: %w", err)
	}
	if vals[0] == nil {
		return 0, generation, false, nil
	}
	count, err = parseInt(vals[0])
	if err != nil {
		return 0, 0, false, fmt.Errorf("cache: bad user count: %w", err)
	}
	return count, generation, true, nil
}

// Store caches count unless an Invalidate happened after generation was read.
func (c *RedisCounter) Store(ctx context.Context, count, generation int64) error {
	err := c.client.Eval(ctx, storeCountScript,
		[]string{userCountKey, userCountGenerationKey},
		count, generation, c.ttl.Milliseconds(),
	).Err()
	if err != nil {
		return fmt.Errorf("cache: failed to set user count: %w", err)
	}
	return nil
}

func (c *RedisCounter) Invalidate(ctx context.Context) error {
	err := c.client.Eval(ctx, invalidateCountScript,
		[]string{userCountKey, userCountGenerationKey},
	).Err()
	if err != nil {
		return fmt.Errorf("cache: failed to invalidate user count: %w", err)
	}
	return nil
}

// parseInt reads an MGET element; a missing key counts as zero.
func parseInt(v interface{}) (int64, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}
