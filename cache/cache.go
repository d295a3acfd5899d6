// Package cache stores graph database responses in Redis, keyed by dialect
// and a hash of the query text.
//
// A RedisCache is used through Wrap, which turns any connector.Fetcher into
// one that answers repeated queries from Redis. Cache failures never fail a
// fetch: they are logged and the backend is queried directly.
package cache

import (
	"context"
	"crypto/tls"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zeebo/xxh3"

	"github.com/ssheladiya/graph-explorer/query"
)

// ErrCacheUnavailable is returned when Redis cannot be reached.
var ErrCacheUnavailable = errors.New("cache unavailable")

// Defaults applied by NewRedisCache.
const (
	DefaultURL            = "redis://localhost:6379"
	DefaultPrefix         = "graph-explorer"
	DefaultTTL            = 5 * time.Minute
	DefaultConnectTimeout = 5 * time.Second
	DefaultReadTimeout    = 30 * time.Second
	DefaultWriteTimeout   = 5 * time.Second
)

// Cache stores raw response bodies per dialect and query.
type Cache interface {
	// Get returns the cached body. A miss returns (nil, false, nil).
	Get(ctx context.Context, dialect query.Dialect, q string) ([]byte, bool, error)

	// Set stores body for the configured TTL.
	Set(ctx context.Context, dialect query.Dialect, q string, body []byte) error

	// Invalidate drops every cached response.
	Invalidate(ctx context.Context) error

	// Close closes the Redis connection.
	Close() error
}

// RedisOptions configures the Redis connection.
type RedisOptions struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379")
	URL string

	// Prefix namespaces every key written by the cache.
	Prefix string

	// TTL is how long a response stays cached.
	TTL time.Duration

	// TLS configuration for secure connections
	TLS *tls.Config

	// ConnectTimeout is the maximum time to wait for connection establishment
	ConnectTimeout time.Duration

	// ReadTimeout is the maximum time to wait for read operations
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait for write operations
	WriteTimeout time.Duration

	// Logger receives cache failures. Nil uses slog.Default().
	Logger *slog.Logger
}

func (o RedisOptions) withDefaults() RedisOptions {
	if o.URL == "" {
		o.URL = DefaultURL
	}
	if o.Prefix == "" {
		o.Prefix = DefaultPrefix
	}
	if o.TTL <= 0 {
		o.TTL = DefaultTTL
	}
	if o.ConnectTimeout == 0 {
		o.ConnectTimeout = DefaultConnectTimeout
	}
	if o.ReadTimeout == 0 {
		o.ReadTimeout = DefaultReadTimeout
	}
	if o.WriteTimeout == 0 {
		o.WriteTimeout = DefaultWriteTimeout
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// RedisCache implements Cache using go-redis/v9.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

var _ Cache = (*RedisCache)(nil)

// NewRedisCache connects to Redis and verifies the connection with PING.
func NewRedisCache(opts RedisOptions) (*RedisCache, error) {
	opts = opts.withDefaults()

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	redisOpts.TLSConfig = opts.TLS
	redisOpts.DialTimeout = opts.ConnectTimeout
	redisOpts.ReadTimeout = opts.ReadTimeout
	redisOpts.WriteTimeout = opts.WriteTimeout

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: failed to connect to Redis: %w", ErrCacheUnavailable, err)
	}

	return &RedisCache{
		client: client,
		prefix: opts.Prefix,
		ttl:    opts.TTL,
		logger: opts.Logger,
	}, nil
}

// Key returns the Redis key for a query: <prefix>:<dialect>:<xxh3 hex>.
func (c *RedisCache) Key(dialect query.Dialect, q string) string {
	return c.prefix + ":" + dialect.String() + ":" + hashQuery(q)
}

func hashQuery(q string) string {
	h := xxh3.New()
	_, _ = h.WriteString(q)
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached body for q.
func (c *RedisCache) Get(ctx context.Context, dialect query.Dialect, q string) ([]byte, bool, error) {
	body, err := c.client.Get(ctx, c.Key(dialect, q)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read cache: %w", err)
	}
	return body, true, nil
}

// Set stores body for q.
func (c *RedisCache) Set(ctx context.Context, dialect query.Dialect, q string, body []byte) error {
	if err := c.client.Set(ctx, c.Key(dialect, q), body, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}

// Invalidate deletes every key under the cache prefix.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache keys: %w", err)
	}
	c.logger.Info("cache invalidated", "prefix", c.prefix, "keys", len(keys))
	return nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
