package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func NewRedisClient(cfg *RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// HealthCheck pings the server behind the cache.
func (s *CacheService) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	return nil
}

// GetStats reports the client's connection pool usage.
func (s *CacheService) GetStats() *redis.PoolStats {
	return s.client.PoolStats()
}

// LogPoolStats logs GetStats every interval until the returned func is called.
func (s *CacheService) LogPoolStats(log *zap.Logger, interval time.Duration) func() {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				stats := s.GetStats()
				log.Debug("redis pool stats",
					zap.Uint32("total", stats.TotalConns),
					zap.Uint32("idle", stats.IdleConns),
					zap.Uint32("stale", stats.StaleConns),
					zap.Uint32("hits", stats.Hits),
					zap.Uint32("misses", stats.Misses),
					zap.Uint32("timeouts", stats.Timeouts),
				)
			}
		}
	}()
	return func() { close(done) }
}
