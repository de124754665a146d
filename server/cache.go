package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Adithya-charan/docuExtract/internal/models"
	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

const statsKey = "docuextract:admin:stats"

// StatsCache holds the last computed dashboard aggregate.
type StatsCache interface {
	Get(ctx context.Context) (*models.AdminStats, error)
	Set(ctx context.Context, stats *models.AdminStats) error
	Invalidate(ctx context.Context) error
}

type RedisStatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStatsCache connects to the Redis instance at url
// (redis://[user:pass@]host:port/db).
func NewRedisStatsCache(ctx context.Context, url string, ttl time.Duration) (*RedisStatsCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisStatsCache{client: client, ttl: ttl}, nil
}

func (c *RedisStatsCache) Get(ctx context.Context) (*models.AdminStats, error) {
	val, err := c.client.Get(ctx, statsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var stats models.AdminStats
	if err := json.Unmarshal(val, &stats); err != nil {
		return nil, fmt.Errorf("decode cached stats: %w", err)
	}
	return &stats, nil
}

func (c *RedisStatsCache) Set(ctx context.Context, stats *models.AdminStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	if err := c.client.Set(ctx, statsKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *RedisStatsCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, statsKey).Err(); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

func (c *RedisStatsCache) Close() error {
	return c.client.Close()
}
