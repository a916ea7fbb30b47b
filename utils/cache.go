package utils

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

var cacheClient *redis.Client

// InitRedis connects the shared cache client. The cache is best-effort:
// when the connection fails every lookup behaves as a miss.
func InitRedis(addr, password string, db int) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		GetLogger().Sugar().Warnf("redis unavailable, caching disabled: %v", err)
		return
	}
	cacheClient = client
}

func GetCacheClient() *redis.Client {
	return cacheClient
}

func CacheGet(ctx context.Context, key string) (string, bool) {
	if cacheClient == nil {
		return "", false
	}
	val, err := cacheClient.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func CacheSet(ctx context.Context, key, val string, ttl time.Duration) {
	if cacheClient == nil {
		return
	}
	_ = cacheClient.Set(ctx, key, val, ttl).Err()
}

func CacheDel(ctx context.Context, keys ...string) {
	if cacheClient == nil {
		return
	}
	_ = cacheClient.Del(ctx, keys...).Err()
}
