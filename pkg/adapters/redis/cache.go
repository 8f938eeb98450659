package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	backend "github.com/redis/go-redis/v9"
	"github.com/smart-table/smart-table-server/internal/logging"
	"github.com/smart-table/smart-table-server/pkg/domain"
	"github.com/smart-table/smart-table-server/pkg/ports"
	"golang.org/x/sync/singleflight"
)

const (
	defaultPrefix = "smarttable:"
	defaultTTL    = 5 * time.Minute
)

// Cache stores query results in Redis, keyed by the table state.
type Cache struct {
	client   *backend.Client
	prefix   string
	ttl      time.Duration
	lockTTL  time.Duration
	locker   *Locker
	logger   *slog.Logger
	inflight singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets how long results stay cached (default 5m).
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithPrefix sets the key prefix (default "smarttable:").
func WithPrefix(prefix string) Option {
	return func(c *Cache) {
		c.prefix = prefix
	}
}

// WithLogger sets the logger used to report Redis failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// WithFillLock makes replicas sharing the cache take a distributed lock before
// computing a missing result, so one of them computes it and the others read it.
func WithFillLock(ttl time.Duration) Option {
	return func(c *Cache) {
		c.lockTTL = ttl
	}
}

// NewCache creates a cache on top of a Redis client.
func NewCache(client *backend.Client, opts ...Option) *Cache {
	c := &Cache{
		client: client,
		prefix: defaultPrefix,
		ttl:    defaultTTL,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.lockTTL > 0 {
		c.locker = NewLocker(client, c.prefix)
	}
	return c
}

// Key returns the cache key of state. States carrying a custom comparator
// cannot be keyed and report false.
func (c *Cache) Key(state domain.TableState) (string, bool) {
	if state.Sort.Comparator != nil {
		return "", false
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return "", false
	}
	sum := sha256.Sum256(raw)
	return c.prefix + "query:" + hex.EncodeToString(sum[:]), true
}

// Invalidate drops every cached result, e.g. after the data behind the query changed.
func (c *Cache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+"query:*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cached results: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cached results: %w", err)
	}
	return nil
}

// Cached wraps query with the cache. Identical concurrent queries are computed
// once. Redis failures are logged and the query runs uncached. A Cache serves a
// single record type; wrap queries over other types with their own prefix.
func Cached[T any](c *Cache, query ports.QueryFunc[T]) ports.QueryFunc[T] {
	return func(ctx context.Context, state domain.TableState) (ports.QueryResult[T], error) {
		key, ok := c.Key(state)
		if !ok {
			return query(ctx, state)
		}
		if result, hit := lookup[T](ctx, c, key); hit {
			return result, nil
		}

		v, err, shared := c.inflight.Do(key, func() (any, error) {
			return fill(ctx, c, key, state, query)
		})
		if err != nil {
			return ports.QueryResult[T]{}, err
		}
		c.logger.Debug("query cache miss", "key", key, "shared", shared)
		return v.(ports.QueryResult[T]), nil
	}
}

func fill[T any](ctx context.Context, c *Cache, key string, state domain.TableState, query ports.QueryFunc[T]) (ports.QueryResult[T], error) {
	if c.locker != nil {
		unlock, err := c.locker.Lock(ctx, "fill:"+key, c.lockTTL)
		if err != nil {
			if ctx.Err() != nil {
				return ports.QueryResult[T]{}, err
			}
			c.logger.Warn("query cache lock unavailable", "key", key, "error", err)
		} else {
			defer func() {
				if err := unlock(context.WithoutCancel(ctx)); err != nil {
					c.logger.Warn("query cache unlock failed", "key", key, "error", err)
				}
			}()
			// Another replica may have filled it while this one waited.
			if result, hit := lookup[T](ctx, c, key); hit {
				return result, nil
			}
		}
	}

	result, err := query(ctx, state)
	if err != nil {
		return result, err
	}
	raw, err := json.Marshal(result)
	if err != nil {
		c.logger.Warn("query result not cacheable", "key", key, "error", err)
		return result, nil
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("query cache write failed", "key", key, "error", err)
	}
	return result, nil
}

func lookup[T any](ctx context.Context, c *Cache, key string) (ports.QueryResult[T], bool) {
	var result ports.QueryResult[T]
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, backend.Nil) {
			c.logger.Warn("query cache read failed", "key", key, "error", err)
		}
		return result, false
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		c.logger.Warn("query cache entry corrupted", "key", key, "error", err)
		return result, false
	}
	return result, true
}
