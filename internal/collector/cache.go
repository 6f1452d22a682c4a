package collector

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"SpotSim/internal/metrics"
	"SpotSim/internal/model"
)

// DefaultCacheTTL is how long a fetched series is served without a new request.
const DefaultCacheTTL = 300 * time.Second

type cacheKey struct {
	symbol string
	limit  int
}

type cacheEntry struct {
	series    model.PriceSeries
	fetchedAt time.Time
}

// CachedFetcher memoizes a PriceSource per (symbol, limit) for a fixed TTL.
// Empty results are never cached, so a failed fetch is retried on the next call.
// Returned series share memory with the cache and must not be modified.
type CachedFetcher struct {
	source PriceSource
	ttl    time.Duration

	mu      sync.RWMutex
	entries map[cacheKey]cacheEntry

	now     func() time.Time
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewCachedFetcher wraps source with a TTL cache.
func NewCachedFetcher(source PriceSource, ttl time.Duration, opts ...Option) *CachedFetcher {
	o := buildOptions(opts)
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedFetcher{
		source:  source,
		ttl:     ttl,
		entries: make(map[cacheKey]cacheEntry),
		now:     o.now,
		logger:  o.logger,
		metrics: o.metrics,
	}
}

func (c *CachedFetcher) Name() string { return "cached(" + c.source.Name() + ")" }

// FetchPrices serves a fresh cached series or fetches and stores a new one.
func (c *CachedFetcher) FetchPrices(ctx context.Context, symbol string, limit int) model.PriceSeries {
	key := cacheKey{symbol: symbol, limit: limit}

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && c.now().Sub(entry.fetchedAt) < c.ttl {
		c.metrics.CacheHit()
		c.logger.Debug("price cache hit", zap.String("symbol", symbol), zap.Int("limit", limit))
		return entry.series
	}
	c.metrics.CacheMiss()

	series := c.source.FetchPrices(ctx, symbol, limit)

	c.mu.Lock()
	defer c.mu.Unlock()
	if series.Empty() {
		if ok {
			// The stale entry is past its TTL either way.
			delete(c.entries, key)
		}
		return series
	}
	c.entries[key] = cacheEntry{series: series, fetchedAt: c.now()}
	return series
}

// Len returns the number of cached keys, fresh or stale.
func (c *CachedFetcher) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
