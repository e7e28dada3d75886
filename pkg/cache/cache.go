// Package cache stores the latest run's derived results in Redis so the
// stats and insights endpoints do not recompute them on every request.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Gobusters/ectologger"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/redis"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

const (
	statsKey    = "clover:connections:stats"
	insightsKey = "clover:connections:insights"
	runKey      = "clover:connections:run"
)

// Nop never stores anything. Used when Redis is disabled; every read
// misses and callers recompute from storage.
type Nop struct{}

func (Nop) StoreRun(ctx context.Context, runID string, stats models.ConnectionStats, insights models.InsightReport) error {
	return nil
}

func (Nop) GetStats(ctx context.Context) (models.ConnectionStats, bool) {
	return models.ConnectionStats{}, false
}

func (Nop) GetInsights(ctx context.Context) (models.InsightReport, bool) {
	return models.InsightReport{}, false
}

func (Nop) Invalidate(ctx context.Context) error {
	return nil
}

// Cache wraps the redis client with typed accessors for run results.
type Cache struct {
	client *redis.Client
	logger ectologger.Logger
	ttl    time.Duration
}

// New creates a new run result cache
func New(client *redis.Client, logger ectologger.Logger, ttl time.Duration) *Cache {
	return &Cache{
		client: client,
		logger: logger,
		ttl:    ttl,
	}
}

// StoreRun caches the derived results of a completed linking run.
func (c *Cache) StoreRun(ctx context.Context, runID string, stats models.ConnectionStats, insights models.InsightReport) error {
	ctx, span := tracing.StartSpan(ctx, "cache.Cache.StoreRun")
	defer span.End()

	statsData, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	insightsData, err := json.Marshal(insights)
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, statsKey, statsData, c.ttl); err != nil {
		c.logger.WithContext(ctx).WithError(err).Warnf("Failed to cache connection stats")
		return err
	}
	if err := c.client.Set(ctx, insightsKey, insightsData, c.ttl); err != nil {
		c.logger.WithContext(ctx).WithError(err).Warnf("Failed to cache connection insights")
		return err
	}
	if err := c.client.Set(ctx, runKey, runID, c.ttl); err != nil {
		c.logger.WithContext(ctx).WithError(err).Warnf("Failed to cache run id")
		return err
	}

	return nil
}

// GetStats returns the cached stats, or false when the cache is cold.
func (c *Cache) GetStats(ctx context.Context) (models.ConnectionStats, bool) {
	ctx, span := tracing.StartSpan(ctx, "cache.Cache.GetStats")
	defer span.End()

	var stats models.ConnectionStats
	data, err := c.client.Get(ctx, statsKey)
	if err != nil {
		if err != goredis.Nil {
			c.logger.WithContext(ctx).WithError(err).Warnf("Failed to read cached stats")
		}
		return stats, false
	}

	if err := json.Unmarshal([]byte(data), &stats); err != nil {
		c.logger.WithContext(ctx).WithError(err).Warnf("Failed to decode cached stats")
		return stats, false
	}
	return stats, true
}

// GetInsights returns the cached insight report, or false when cold.
func (c *Cache) GetInsights(ctx context.Context) (models.InsightReport, bool) {
	ctx, span := tracing.StartSpan(ctx, "cache.Cache.GetInsights")
	defer span.End()

	var report models.InsightReport
	data, err := c.client.Get(ctx, insightsKey)
	if err != nil {
		if err != goredis.Nil {
			c.logger.WithContext(ctx).WithError(err).Warnf("Failed to read cached insights")
		}
		return report, false
	}

	if err := json.Unmarshal([]byte(data), &report); err != nil {
		c.logger.WithContext(ctx).WithError(err).Warnf("Failed to decode cached insights")
		return report, false
	}
	return report, true
}

// Invalidate drops every cached run result. Called when new data is
// imported, before the next run repopulates the cache.
func (c *Cache) Invalidate(ctx context.Context) error {
	ctx, span := tracing.StartSpan(ctx, "cache.Cache.Invalidate")
	defer span.End()

	return c.client.Del(ctx, statsKey, insightsKey, runKey)
}
