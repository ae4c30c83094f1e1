package repositories

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const cacheKeyPrefix = "crm:"

// INCR и PEXPIRE одним скриптом: счетчик не может остаться без TTL.
var incrWithTTLScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

type RedisCacheRepository struct {
	client *redis.Client
}

func NewRedisCacheRepository(client *redis.Client) CacheRepositoryInterface {
	return &RedisCacheRepository{client: client}
}

func cacheKey(key string) string {
	return cacheKeyPrefix + key
}

// Get возвращает redis.Nil, если ключа нет.
func (r *RedisCacheRepository) Get(ctx context.Context, key string) (string, error) {
	return r.client.Get(ctx, cacheKey(key)).Result()
}

func (r *RedisCacheRepository) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return r.client.Set(ctx, cacheKey(key), value, expiration).Err()
}

func (r *RedisCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, cacheKey(key)).Result()
	return n > 0, err
}

func (r *RedisCacheRepository) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = cacheKey(k)
	}
	return r.client.Del(ctx, full...).Err()
}

func (r *RedisCacheRepository) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	return incrWithTTLScript.Run(ctx, r.client, []string{cacheKey(key)}, ttl.Milliseconds()).Int64()
}
