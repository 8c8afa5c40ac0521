// Package settings provides the global site settings cache consumed by the
// rendering engine: a read-through cache over Redis with a static defaults
// layer, plus the labs feature-flag gate.
package settings

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lumenpress/mailroom/internal/pkg/logger"
)

const (
	keyPrefix = "mailroom:settings:"

	// labsKey holds a JSON object of flag name → bool.
	labsKey = "labs"

	redisTimeout = 250 * time.Millisecond
)

// Cache is a read-through settings cache. Lookups hit the in-process map
// first, then Redis, then the static defaults. All reads are total: a
// missing key yields the zero value. A nil Redis client degrades to
// defaults-plus-local only.
type Cache struct {
	rdb      *redis.Client
	local    sync.Map // key → string
	defaults map[string]string
}

// New creates a settings cache. rdb may be nil; defaults may be nil.
func New(rdb *redis.Client, defaults map[string]string) *Cache {
	if defaults == nil {
		defaults = map[string]string{}
	}
	return &Cache{rdb: rdb, defaults: defaults}
}

// Get returns the value for key, or "" when unset anywhere.
func (c *Cache) Get(key string) string {
	if v, ok := c.local.Load(key); ok {
		return v.(string)
	}
	if c.rdb != nil {
		ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
		defer cancel()
		v, err := c.rdb.Get(ctx, keyPrefix+key).Result()
		if err == nil {
			c.local.Store(key, v)
			return v
		}
		if err != redis.Nil {
			logger.Warn("settings redis lookup failed", "key", key, "error", err.Error())
		}
	}
	return c.defaults[key]
}

// GetBool interprets a setting as a boolean.
func (c *Cache) GetBool(key string) bool {
	return c.Get(key) == "true"
}

// Set writes a value through to Redis (when configured) and the local cache.
func (c *Cache) Set(ctx context.Context, key, value string) error {
	if c.rdb != nil {
		if err := c.rdb.Set(ctx, keyPrefix+key, value, 0).Err(); err != nil {
			return err
		}
	}
	c.local.Store(key, value)
	return nil
}

// Invalidate drops a key from the local layer so the next Get re-reads
// Redis.
func (c *Cache) Invalidate(key string) {
	c.local.Delete(key)
}

// Enabled reports whether a labs flag is on. The labs setting is a JSON
// object of flag name → bool; a missing or malformed setting means off.
// Implements the renderer's flag gate.
func (c *Cache) Enabled(flag string) bool {
	raw := c.Get(labsKey)
	if raw == "" {
		return false
	}
	var flags map[string]bool
	if err := json.Unmarshal([]byte(raw), &flags); err != nil {
		logger.Warn("labs setting is not valid JSON", "error", err.Error())
		return false
	}
	return flags[flag]
}
