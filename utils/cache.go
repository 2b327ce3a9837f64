package utils

import (
	"context"
	"log"
	"time"

	"parkinglot/config"

	"github.com/go-redis/redis/v8"
)

// CacheClient is the shared Redis client used for pub/sub and health checks.
var CacheClient *redis.Client

// InitCache connects to Redis using REDIS_CACHE_DB.
func InitCache() {
	CacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := CacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Cache): %v", err)
	}
}

// GetCacheClient returns the shared client, connecting on first use.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		InitCache()
	}
	return CacheClient
}
