package utils

import (
	"context"
	"sync"
	"time"
)

// Pinger probes one dependency.
type Pinger func(ctx context.Context) error

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Mongo     bool      `json:"mongo"`
	Redis     bool      `json:"redis"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Healthy reports whether every dependency answered the last probe.
func (h HealthStatus) Healthy() bool {
	return h.Mongo && h.Redis
}

var (
	currentHealth HealthStatus
	mu            sync.RWMutex
)

// GetHealthStatus returns latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	mu.RLock()
	defer mu.RUnlock()
	return currentHealth
}

// CheckHealth probes both dependencies once and stores the result.
// A nil redis pinger counts as healthy; Redis is optional.
func CheckHealth(ctx context.Context, mongo, redis Pinger) HealthStatus {
	probe := func(p Pinger) bool {
		if p == nil {
			return true
		}
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		return p(pctx) == nil
	}
	status := HealthStatus{
		Mongo:     probe(mongo),
		Redis:     probe(redis),
		CheckedAt: time.Now().UTC(),
	}
	mu.Lock()
	currentHealth = status
	mu.Unlock()
	return status
}

// StartHealthMonitor probes immediately, then every interval until ctx ends.
func StartHealthMonitor(ctx context.Context, interval time.Duration, mongo, redis Pinger) {
	CheckHealth(ctx, mongo, redis)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				CheckHealth(ctx, mongo, redis)
			}
		}
	}()
}
