package store

import (
	"context"
	"errors"
	"log/slog"

	"curpkit/internal/curp/models"
	"curpkit/pkg/platform/circuit"
	"curpkit/pkg/platform/sentinel"
)

// Cache is the contract shared by the cache implementations.
type Cache interface {
	Find(ctx context.Context, key string) (*models.CachedCode, error)
	Save(ctx context.Context, key string, record models.CachedCode) error
}

// DegradedReporter receives breaker transitions.
type DegradedReporter interface {
	SetCacheDegraded(degraded bool)
}

// FallbackCache reads and writes through a primary cache and switches to a
// local fallback after repeated primary failures. While degraded the primary
// is still tried on every call, and enough consecutive successes switch back.
type FallbackCache struct {
	primary  Cache
	fallback Cache
	breaker  *circuit.Breaker
	logger   *slog.Logger
	reporter DegradedReporter
}

type FallbackOption func(*FallbackCache)

func WithBreaker(b *circuit.Breaker) FallbackOption {
	return func(c *FallbackCache) { c.breaker = b }
}

func WithLogger(logger *slog.Logger) FallbackOption {
	return func(c *FallbackCache) { c.logger = logger }
}

func WithDegradedReporter(r DegradedReporter) FallbackOption {
	return func(c *FallbackCache) { c.reporter = r }
}

func NewFallbackCache(primary, fallback Cache, opts ...FallbackOption) *FallbackCache {
	c := &FallbackCache{
		primary:  primary,
		fallback: fallback,
		breaker:  circuit.New("curp-cache"),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Degraded reports whether the fallback is active.
func (c *FallbackCache) Degraded() bool {
	return c.breaker.IsOpen()
}

func (c *FallbackCache) Find(ctx context.Context, key string) (*models.CachedCode, error) {
	record, err := c.primary.Find(ctx, key)
	switch {
	case err == nil:
		c.recordSuccess(ctx)
		return record, nil
	case errors.Is(err, sentinel.ErrNotFound):
		c.recordSuccess(ctx)
		if c.breaker.IsOpen() {
			// Saves made while degraded only reached the fallback.
			return c.fallback.Find(ctx, key)
		}
		return nil, err
	default:
		c.recordFailure(ctx, err)
		return c.fallback.Find(ctx, key)
	}
}

func (c *FallbackCache) Save(ctx context.Context, key string, record models.CachedCode) error {
	if err := c.primary.Save(ctx, key, record); err != nil {
		c.recordFailure(ctx, err)
		return c.fallback.Save(ctx, key, record)
	}
	c.recordSuccess(ctx)
	if c.breaker.IsOpen() {
		return c.fallback.Save(ctx, key, record)
	}
	return nil
}

func (c *FallbackCache) recordFailure(ctx context.Context, err error) {
	_, change := c.breaker.RecordFailure()
	if change.Opened {
		c.logger.WarnContext(ctx, "cache primary unavailable, switching to in-memory fallback",
			"breaker", c.breaker.Name(),
			"error", err,
		)
		c.report(true)
	}
}

func (c *FallbackCache) recordSuccess(ctx context.Context) {
	_, change := c.breaker.RecordSuccess()
	if change.Closed {
		c.logger.InfoContext(ctx, "cache primary recovered, leaving fallback",
			"breaker", c.breaker.Name(),
		)
		c.report(false)
	}
}

func (c *FallbackCache) report(degraded bool) {
	if c.reporter != nil {
		c.reporter.SetCacheDegraded(degraded)
	}
}
