// Package cache provides Redis-backed decorators for read-heavy repositories.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/pkg/logger"
)

// StatsReader is the aggregation surface the dashboard reads from
type StatsReader interface {
	CountByStatus(ctx context.Context) ([]models.GroupCount, error)
	CountByCourse(ctx context.Context) ([]models.GroupCount, error)
	Count(ctx context.Context, status *models.ApplicationStatus) (int64, error)
	DailyCounts(ctx context.Context, since time.Time) ([]models.DayCount, error)
	Recent(ctx context.Context, limit uint64) ([]models.ApplicationSummary, error)
}

// CachingStatsRepository decorates a StatsReader with Redis caching.
// A nil client turns it into a pass-through.
type CachingStatsRepository struct {
	inner     StatsReader
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// NewCachingStatsRepository wraps inner. ttl defaults to 1 minute and namespace to "stats".
func NewCachingStatsRepository(rdb *redis.Client, ttl time.Duration, inner StatsReader, namespace string) *CachingStatsRepository {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if namespace == "" {
		namespace = "stats"
	}
	return &CachingStatsRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// cached returns the value stored under key or loads, stores and returns it
func cached[T any](ctx context.Context, c *CachingStatsRepository, key string, load func() (T, error)) (T, error) {
	if c.rdb == nil {
		return load()
	}

	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out T
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		_ = c.rdb.Del(ctx, key).Err()
	}

	out, err := load()
	if err != nil {
		return out, err
	}

	if b, err := json.Marshal(out); err == nil {
		if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
			logger.Debug().Err(err).Str("key", key).Msg("Failed to cache stats")
		}
	}
	return out, nil
}

// CountByStatus groups applications by status
func (c *CachingStatsRepository) CountByStatus(ctx context.Context) ([]models.GroupCount, error) {
	return cached(ctx, c, c.key("by_status"), func() ([]models.GroupCount, error) {
		return c.inner.CountByStatus(ctx)
	})
}

// CountByCourse groups applications by course
func (c *CachingStatsRepository) CountByCourse(ctx context.Context) ([]models.GroupCount, error) {
	return cached(ctx, c, c.key("by_course"), func() ([]models.GroupCount, error) {
		return c.inner.CountByCourse(ctx)
	})
}

// Count counts applications, optionally for one status
func (c *CachingStatsRepository) Count(ctx context.Context, status *models.ApplicationStatus) (int64, error) {
	label := "all"
	if status != nil {
		label = string(*status)
	}
	return cached(ctx, c, c.key("count", label), func() (int64, error) {
		return c.inner.Count(ctx, status)
	})
}

// DailyCounts is cached per start day, so callers should pass a day boundary
func (c *CachingStatsRepository) DailyCounts(ctx context.Context, since time.Time) ([]models.DayCount, error) {
	return cached(ctx, c, c.key("daily", since.UTC().Format("2006-01-02")), func() ([]models.DayCount, error) {
		return c.inner.DailyCounts(ctx, since)
	})
}

// Recent returns the newest application summaries
func (c *CachingStatsRepository) Recent(ctx context.Context, limit uint64) ([]models.ApplicationSummary, error) {
	return cached(ctx, c, c.key("recent", fmt.Sprint(limit)), func() ([]models.ApplicationSummary, error) {
		return c.inner.Recent(ctx, limit)
	})
}

// Invalidate drops every cached aggregation in the namespace.
// Failures are logged and swallowed; entries expire on their own.
func (c *CachingStatsRepository) Invalidate(ctx context.Context) {
	if c.rdb == nil {
		return
	}
	if err := c.deleteByPattern(ctx, c.namespace+":*"); err != nil {
		logger.Warn().Err(err).Str("namespace", c.namespace).Msg("Failed to invalidate stats cache")
	}
}

func (c *CachingStatsRepository) key(parts ...string) string {
	k := c.namespace
	for _, p := range parts {
		k += ":" + p
	}
	return k
}

// deleteByPattern deletes all keys matching pattern using SCAN
func (c *CachingStatsRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			return nil
		}
	}
}
