package rankings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcdev12/sushirush/go/internal/models"
)

const topKey = "sushirush:rankings:top"

// RedisCache stores leaderboards in one Redis hash keyed by limit. The hash
// expires ttl after its first write and is dropped whole on invalidation.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a leaderboard cache on top of client
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// GetTop returns the cached leaderboard for limit, if present
func (c *RedisCache) GetTop(ctx context.Context, limit int) ([]models.UserStats, bool, error) {
	raw, err := c.client.HGet(ctx, topKey, strconv.Itoa(limit)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read rankings cache: %w", err)
	}

	var stats []models.UserStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, false, fmt.Errorf("failed to decode rankings cache: %w", err)
	}
	return stats, true, nil
}

// SetTop caches the leaderboard for limit
func (c *RedisCache) SetTop(ctx context.Context, limit int, stats []models.UserStats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to encode rankings: %w", err)
	}

	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, topKey, strconv.Itoa(limit), raw)
		pipe.ExpireNX(ctx, topKey, c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write rankings cache: %w", err)
	}
	return nil
}

// Invalidate drops every cached leaderboard
func (c *RedisCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, topKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate rankings cache: %w", err)
	}
	return nil
}

// NoopCache never hits. It is used when no Redis address is configured.
type NoopCache struct{}

func (NoopCache) GetTop(context.Context, int) ([]models.UserStats, bool, error) {
	return nil, false, nil
}

func (NoopCache) SetTop(context.Context, int, []models.UserStats) error { return nil }

func (NoopCache) Invalidate(context.Context) error { return nil }
