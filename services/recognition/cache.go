package recognition

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const readingPrefix = "recognition:"

// ErrCacheMiss is returned by a ReadingStore that has no entry for a key.
var ErrCacheMiss = errors.New("cache miss")

// ReadingStore keeps encoded readings by key.
type ReadingStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// RedisReadingStore stores readings in Redis with a fixed TTL.
type RedisReadingStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisReadingStore(client *redis.Client, ttl time.Duration) *RedisReadingStore {
	return &RedisReadingStore{client: client, ttl: ttl}
}

func (s *RedisReadingStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, readingPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	return data, err
}

func (s *RedisReadingStore) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, readingPrefix+key, value, s.ttl).Err()
}

// Cached remembers readings by image hash. Cache failures are logged and
// fall through to the wrapped recognizer.
type Cached struct {
	Next   Recognizer
	Store  ReadingStore
	Logger *zap.Logger
}

func NewCached(next Recognizer, store ReadingStore, logger *zap.Logger) *Cached {
	return &Cached{Next: next, Store: store, Logger: logger}
}

func (c *Cached) RecognizePlate(ctx context.Context, image []byte, mimeType string) (PlateReading, error) {
	var reading PlateReading
	key := cacheKey("plate", image)
	if c.load(ctx, key, &reading) {
		return reading, nil
	}
	reading, err := c.Next.RecognizePlate(ctx, image, mimeType)
	if err != nil {
		return reading, err
	}
	c.save(ctx, key, reading)
	return reading, nil
}

func (c *Cached) RecognizeVehicle(ctx context.Context, image []byte, mimeType string) (VehicleReading, error) {
	var reading VehicleReading
	key := cacheKey("vehicle", image)
	if c.load(ctx, key, &reading) {
		return reading, nil
	}
	reading, err := c.Next.RecognizeVehicle(ctx, image, mimeType)
	if err != nil {
		return reading, err
	}
	c.save(ctx, key, reading)
	return reading, nil
}

func (c *Cached) load(ctx context.Context, key string, out any) bool {
	data, err := c.Store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.Logger.Warn("Recognition cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.Logger.Warn("Discarding undecodable cached reading", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *Cached) save(ctx context.Context, key string, reading any) {
	data, err := json.Marshal(reading)
	if err != nil {
		return
	}
	if err := c.Store.Set(ctx, key, data); err != nil {
		c.Logger.Warn("Recognition cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func cacheKey(kind string, image []byte) string {
	sum := sha256.Sum256(image)
	return kind + ":" + hex.EncodeToString(sum[:])
}
