package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache is a Provider backed by a Redis server, for deployments
// where multiple gateway instances share one edge cache.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to the Redis server at addr.
func NewRedisCache(addr string) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

// Get implements Provider. Expiry is delegated to Redis TTLs.
func (r *RedisCache) Get(key string) ([]byte, bool, error) {
	bytes, err := r.client.Get(context.Background(), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return bytes, true, nil
}

// Put implements Provider.
func (r *RedisCache) Put(key string, expires time.Time, bytes []byte) error {
	ttl := time.Until(expires)
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(context.Background(), key, bytes, ttl).Err()
}

// Purge implements Provider.
func (r *RedisCache) Purge(key string) error {
	return r.client.Del(context.Background(), key).Err()
}
