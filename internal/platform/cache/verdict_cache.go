// Package cache provides Redis caching for fire detection verdicts.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"fire_backend/internal/feature/firedetection/domain/entity"
	"fire_backend/internal/feature/firedetection/usecase"
)

// VerdictCache stores per-image detection verdicts in Redis.
// A nil client turns every call into a miss, so callers never need to branch on Redis availability.
type VerdictCache struct {
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.ResultCache = (*VerdictCache)(nil)

// NewVerdictCache creates a VerdictCache.
// If ttl is 0, it defaults to 10 minutes. If namespace is empty, it uses "verdicts".
func NewVerdictCache(rdb *redis.Client, ttl time.Duration, namespace string) *VerdictCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if namespace == "" {
		namespace = "verdicts"
	}
	return &VerdictCache{
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Get returns the cached verdict for key. Redis errors and corrupt entries are misses.
func (c *VerdictCache) Get(ctx context.Context, key string) (*entity.Verdict, bool) {
	if c.rdb == nil {
		return nil, false
	}

	k := c.cacheKey(key)
	b, err := c.rdb.Get(ctx, k).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("verdict cache read failed", "key", k, "error", err)
		}
		return nil, false
	}

	var v entity.Verdict
	if err := json.Unmarshal(b, &v); err != nil {
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, k).Err()
		return nil, false
	}
	return &v, true
}

// Set stores the verdict (best effort).
func (c *VerdictCache) Set(ctx context.Context, key string, v *entity.Verdict) {
	if c.rdb == nil || v == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	k := c.cacheKey(key)
	if err := c.rdb.Set(ctx, k, b, c.ttl).Err(); err != nil {
		slog.Warn("verdict cache write failed", "key", k, "error", err)
	}
}

// cacheKey generates the namespaced Redis key.
func (c *VerdictCache) cacheKey(key string) string {
	return fmt.Sprintf("%s:%s", c.namespace, safe(key))
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	return strings.ReplaceAll(s, " ", "_")
}
