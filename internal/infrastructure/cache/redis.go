package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fxmon/internal/application"
	"fxmon/internal/domain"
)

var _ application.RateCache = (*Redis)(nil)

// Redis caches backfill responses as JSON blobs with a TTL, letting
// several processes share one upstream quota.
type Redis struct {
	Client *redis.Client
}

func NewRedis(client *redis.Client) *Redis { return &Redis{Client: client} }

func (c *Redis) Get(ctx context.Context, key string) ([]domain.Quote, error) {
	raw, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}
	var quotes []domain.Quote
	if err := json.Unmarshal(raw, &quotes); err != nil {
		return nil, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return quotes, nil
}

func (c *Redis) Set(ctx context.Context, key string, quotes []domain.Quote, ttl time.Duration) error {
	raw, err := json.Marshal(quotes)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := c.Client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}
