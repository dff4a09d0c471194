package privacy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chris/ethicalbank/pkg/models"
	"github.com/redis/go-redis/v9"
)

const defaultCachePrefix = "ethicalbank:privacy:score:"

// CachedScore is a score together with when it was computed.
type CachedScore struct {
	Score      models.PrivacyScore `json:"score"`
	ComputedAt time.Time           `json:"computed_at"`
}

// ScoreCache stores computed privacy scores per user.
type ScoreCache interface {
	// Get returns the cached score, or nil on a miss.
	Get(ctx context.Context, userID string) (*CachedScore, error)
	Set(ctx context.Context, userID string, score CachedScore) error
	Invalidate(ctx context.Context, userID string) error
}

// RedisScoreCache keeps scores in redis under a per-user key with a TTL.
type RedisScoreCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

var _ ScoreCache = (*RedisScoreCache)(nil)

func NewRedisScoreCache(client *redis.Client, ttl time.Duration, prefix string) *RedisScoreCache {
	if prefix == "" {
		prefix = defaultCachePrefix
	}
	return &RedisScoreCache{client: client, ttl: ttl, prefix: prefix}
}

func (c *RedisScoreCache) Get(ctx context.Context, userID string) (*CachedScore, error) {
	raw, err := c.client.Get(ctx, c.prefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached privacy score: %w", err)
	}

	var cached CachedScore
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, fmt.Errorf("failed to decode cached privacy score: %w", err)
	}
	return &cached, nil
}

func (c *RedisScoreCache) Set(ctx context.Context, userID string, score CachedScore) error {
	raw, err := json.Marshal(score)
	if err != nil {
		return fmt.Errorf("failed to encode privacy score: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+userID, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache privacy score: %w", err)
	}
	return nil
}

func (c *RedisScoreCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, c.prefix+userID).Err(); err != nil {
		return fmt.Errorf("failed to invalidate privacy score: %w", err)
	}
	return nil
}

// NoOpScoreCache never stores anything. It is used when redis is not configured.
type NoOpScoreCache struct{}

var _ ScoreCache = NoOpScoreCache{}

func (NoOpScoreCache) Get(context.Context, string) (*CachedScore, error) { return nil, nil }
func (NoOpScoreCache) Set(context.Context, string, CachedScore) error { return nil }
func (NoOpScoreCache) Invalidate(context.Context, string) error { return nil }
