package services

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bimakw/portfolio-tracker/internal/infrastructure/cache"
	"github.com/bimakw/portfolio-tracker/internal/infrastructure/metrics"
)

const fxCacheKey = "fx:usd:eur"

// FallbackUSDToEUR is used whenever the live rate cannot be obtained
var FallbackUSDToEUR = decimal.RequireFromString("0.92")

// RateSource provides the live USD to EUR rate
type RateSource interface {
	USDToEUR(ctx context.Context) (decimal.Decimal, error)
}

// FXConverter resolves the USD to EUR rate.
// Live rates are kept in process and, when configured, in Redis for ttl.
// The fallback rate is never cached.
type FXConverter struct {
	source RateSource
	cache  *cache.RedisCache
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	mu        sync.Mutex
	rate      decimal.Decimal
	fetchedAt time.Time
}

// NewFXConverter creates a new converter. A zero ttl disables caching.
func NewFXConverter(source RateSource, cache *cache.RedisCache, ttl time.Duration, logger *zap.Logger) *FXConverter {
	return &FXConverter{
		source: source,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// USDToEURRate returns how many EUR one USD buys. It never fails.
func (c *FXConverter) USDToEURRate(ctx context.Context) decimal.Decimal {
	if rate, ok := c.cached(ctx); ok {
		return rate
	}

	rate, err := c.source.USDToEUR(ctx)
	if err != nil {
		c.logger.Warn("Using fallback FX rate",
			zap.String("fallback", FallbackUSDToEUR.String()),
			zap.Error(err),
		)
		metrics.IncFXFallback()
		return FallbackUSDToEUR
	}

	c.store(ctx, rate)
	return rate
}

func (c *FXConverter) cached(ctx context.Context) (decimal.Decimal, bool) {
	if c.ttl <= 0 {
		return decimal.Decimal{}, false
	}

	c.mu.Lock()
	if !c.fetchedAt.IsZero() && c.now().Sub(c.fetchedAt) < c.ttl {
		rate := c.rate
		c.mu.Unlock()
		return rate, true
	}
	c.mu.Unlock()

	if c.cache != nil {
		var rate decimal.Decimal
		if err := c.cache.Get(ctx, fxCacheKey, &rate); err == nil {
			c.logger.Debug("Cache hit", zap.String("key", fxCacheKey))
			c.remember(rate)
			return rate, true
		}
	}
	return decimal.Decimal{}, false
}

func (c *FXConverter) store(ctx context.Context, rate decimal.Decimal) {
	if c.ttl <= 0 {
		return
	}
	c.remember(rate)

	if c.cache != nil {
		if err := c.cache.SetWithTTL(ctx, fxCacheKey, rate, c.ttl); err != nil {
			c.logger.Warn("Failed to cache FX rate", zap.Error(err))
		}
	}
}

func (c *FXConverter) remember(rate decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rate = rate
	c.fetchedAt = c.now()
}
