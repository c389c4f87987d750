package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mealtrack-go-api/internal/observability"
)

const analyticsVersionKey = "analytics:version"

// AnalyticsCache stores aggregated analytics payloads in redis under a
// version-stamped key. Writers that can change aggregates (claims, backfills,
// student and schedule edits) bump the version counter, which orphans every
// previously cached payload instead of mutating shared state in-process.
type AnalyticsCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewAnalyticsCache constructs the cache. A nil client disables caching.
func NewAnalyticsCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *AnalyticsCache {
	return &AnalyticsCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "analytics_cache").Logger(),
	}
}

// Bump invalidates all cached analytics by advancing the version counter.
func (c *AnalyticsCache) Bump(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Incr(ctx, analyticsVersionKey).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to bump analytics cache version")
	}
}

func (c *AnalyticsCache) versionedKey(ctx context.Context, key string) (string, error) {
	version, err := c.client.Get(ctx, analyticsVersionKey).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}
	return fmt.Sprintf("analytics:v%d:%s", version, key), nil
}

// Get unmarshals the cached payload for key into target, reporting whether a
// fresh-version entry was found. Errors are swallowed: a broken cache only
// costs a recomputation.
func (c *AnalyticsCache) Get(ctx context.Context, key string, target interface{}) bool {
	if c == nil || c.client == nil {
		return false
	}

	versioned, err := c.versionedKey(ctx, key)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to read analytics cache version")
		return false
	}

	cached, err := c.client.Get(ctx, versioned).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn().Err(err).Msg("failed to read analytics cache")
		}
		observability.AnalyticsCacheOps().WithLabelValues("miss").Inc()
		return false
	}

	if json.Unmarshal([]byte(cached), target) != nil {
		observability.AnalyticsCacheOps().WithLabelValues("miss").Inc()
		return false
	}

	observability.AnalyticsCacheOps().WithLabelValues("hit").Inc()
	return true
}

// Set stores the payload for key under the current version.
func (c *AnalyticsCache) Set(ctx context.Context, key string, payload interface{}) {
	if c == nil || c.client == nil {
		return
	}

	versioned, err := c.versionedKey(ctx, key)
	if err != nil {
		return
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, versioned, encoded, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to store analytics cache")
	}
}
