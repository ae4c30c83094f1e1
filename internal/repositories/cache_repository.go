package repositories

import (
	"context"
	"time"
)

// CacheRepositoryInterface - счетчики и флаги с TTL (попытки входа, блокировки).
// Ключи передаются без префикса, реализация сама кладет их в пространство crm:.
type CacheRepositoryInterface interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Del(ctx context.Context, keys ...string) error
	// IncrWithTTL увеличивает счетчик; TTL ставится только при создании ключа.
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}
