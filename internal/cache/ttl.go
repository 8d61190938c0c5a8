// Package cache keeps a compressed, timestamped copy of a value in a
// pluggable key/value backend and treats it as absent once its TTL passes.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/klauspost/compress/zstd"
)

// DefaultTTL is how long a written entry stays readable.
const DefaultTTL = time.Hour

// ErrMiss is returned by a Backend when a key has no value.
var ErrMiss = errors.New("cache miss")

// Backend stores raw bytes by key.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}

var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	decoder, _ = zstd.NewReader(nil)
)

// TTLCache stores one JSON value under a data key, compressed with zstd,
// alongside a write timestamp (unix milliseconds) under a second key.
type TTLCache struct {
	backend Backend
	dataKey string
	tsKey   string
	ttl     time.Duration
	now     func() time.Time
}

// Option configures a TTLCache.
type Option func(*TTLCache)

// WithClock overrides the time source used for freshness checks.
func WithClock(now func() time.Time) Option {
	return func(c *TTLCache) { c.now = now }
}

// New creates a cache for a single key. A non-positive ttl means DefaultTTL.
func New(backend Backend, key string, ttl time.Duration, opts ...Option) *TTLCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &TTLCache{
		backend: backend,
		dataKey: key,
		tsKey:   key + "_timestamp",
		ttl:     ttl,
		now:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// TTL returns the configured time-to-live.
func (c *TTLCache) TTL() time.Duration {
	return c.ttl
}

// Read decodes the cached value into dst. It reports false on a miss, an
// missing, expired or unreadable timestamp, or a payload that fails to
// decode. Both keys are cleared in each of those cases.
func (c *TTLCache) Read(ctx context.Context, dst interface{}) bool {
	rawTS, err := c.backend.Get(ctx, c.tsKey)
	if errors.Is(err, ErrMiss) {
		c.clear(ctx, "missing timestamp")
		return false
	}
	if err != nil {
		slog.Debug("cache timestamp read failed", "key", c.dataKey, "error", err)
		return false
	}

	ts, err := strconv.ParseInt(string(rawTS), 10, 64)
	if err != nil {
		c.clear(ctx, "bad timestamp")
		return false
	}
	if c.now().Sub(time.UnixMilli(ts)) >= c.ttl {
		c.clear(ctx, "expired")
		return false
	}

	compressed, err := c.backend.Get(ctx, c.dataKey)
	if err != nil {
		c.clear(ctx, "missing data")
		return false
	}
	raw, err := decoder.DecodeAll(compressed, nil)
	if err != nil {
		c.clear(ctx, "decompress failed")
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.clear(ctx, "decode failed")
		return false
	}
	return true
}

// Write replaces the cached value with v and stamps it with the current time.
func (c *TTLCache) Write(ctx context.Context, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding cache value: %w", err)
	}
	compressed := encoder.EncodeAll(raw, make([]byte, 0, len(raw)/2))

	if err := c.backend.Set(ctx, c.dataKey, compressed); err != nil {
		return fmt.Errorf("writing cache data: %w", err)
	}
	ts := strconv.FormatInt(c.now().UnixMilli(), 10)
	if err := c.backend.Set(ctx, c.tsKey, []byte(ts)); err != nil {
		return fmt.Errorf("writing cache timestamp: %w", err)
	}
	return nil
}

// Invalidate drops the cached value.
func (c *TTLCache) Invalidate(ctx context.Context) error {
	if err := c.backend.Delete(ctx, c.dataKey, c.tsKey); err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	return nil
}

func (c *TTLCache) clear(ctx context.Context, reason string) {
	slog.Debug("cache entry cleared", "key", c.dataKey, "reason", reason)
	if err := c.backend.Delete(ctx, c.dataKey, c.tsKey); err != nil {
		slog.Debug("cache clear failed", "key", c.dataKey, "error", err)
	}
}
