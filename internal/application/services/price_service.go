package services

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bimakw/portfolio-tracker/internal/config"
	"github.com/bimakw/portfolio-tracker/internal/domain/entities"
	"github.com/bimakw/portfolio-tracker/internal/infrastructure/cache"
	"github.com/bimakw/portfolio-tracker/internal/infrastructure/metrics"
	"github.com/bimakw/portfolio-tracker/internal/infrastructure/pricing"
)

// CryptoPriceSource quotes a crypto symbol in USD
type CryptoPriceSource interface {
	QuotePrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// StockPriceSource returns the latest close of a ticker in USD
type StockPriceSource interface {
	LastClose(ctx context.Context, ticker string) (decimal.Decimal, error)
}

// PageScraper reads a EUR price from a web page
type PageScraper interface {
	ScrapePrice(ctx context.Context, pageURL, selector string) (decimal.Decimal, error)
}

// PriceService resolves the current EUR unit price of a holding
type PriceService struct {
	crypto  CryptoPriceSource
	stocks  StockPriceSource
	scraper PageScraper
	fx      *FXConverter
	logger  *zap.Logger
}

// NewPriceService creates a new price service
func NewPriceService(
	crypto CryptoPriceSource,
	stocks StockPriceSource,
	scraper PageScraper,
	fx *FXConverter,
	logger *zap.Logger,
) *PriceService {
	return &PriceService{
		crypto:  crypto,
		stocks:  stocks,
		scraper: scraper,
		fx:      fx,
		logger:  logger,
	}
}

// NewPriceServiceFromConfig wires the live Binance, Yahoo, scrape and FX sources.
// redisCache may be nil.
func NewPriceServiceFromConfig(cfg config.PricingConfig, redisCache *cache.RedisCache, logger *zap.Logger) *PriceService {
	httpClient := &http.Client{}

	fx := NewFXConverter(
		pricing.NewExchangeRateClient(cfg.FXURL, cfg.APITimeout, httpClient),
		redisCache,
		cfg.FXCacheTTL,
		logger,
	)

	return NewPriceService(
		pricing.NewBinanceClient(cfg.BinanceBaseURL, cfg.BinanceAPIKey, cfg.QuoteAsset, cfg.APITimeout, httpClient),
		pricing.NewYahooClient(cfg.YahooBaseURL, cfg.ScrapeUserAgent, cfg.APITimeout, httpClient),
		pricing.NewScraper(cfg.ScrapeUserAgent, cfg.ScrapeTimeout, httpClient),
		fx,
		logger,
	)
}

// ResolvePrice looks up the holding's unit price in EUR.
// Failures are reported through the quote, never as an error.
func (s *PriceService) ResolvePrice(ctx context.Context, h entities.Holding) entities.PriceQuote {
	start := time.Now()

	var (
		source entities.PriceSource
		price  decimal.Decimal
		err    error
		inUSD  bool
	)

	switch h.Kind {
	case entities.KindCrypto:
		source = entities.SourceBinance
		price, err = s.crypto.QuotePrice(ctx, h.Symbol)
		inUSD = true
	case entities.KindStock:
		source = entities.SourceYahoo
		price, err = s.stocks.LastClose(ctx, h.Symbol)
		inUSD = true
	case entities.KindCoin:
		source = entities.SourceScrape
		price, err = s.scraper.ScrapePrice(ctx, h.URL, h.CSSSelector)
	default:
		return entities.UnavailableQuote("", entities.ReasonUnsupported)
	}

	metrics.ObservePriceLookup(string(source), err == nil, time.Since(start))

	if err != nil {
		s.logger.Warn("Price unavailable",
			zap.String("kind", string(h.Kind)),
			zap.String("holding_id", h.ID),
			zap.String("symbol", h.Symbol),
			zap.String("url", h.URL),
			zap.Error(err),
		)
		return entities.UnavailableQuote(source, pricing.ReasonOf(err))
	}

	if inUSD {
		price = price.Mul(s.fx.USDToEURRate(ctx))
	}
	return entities.AvailableQuote(source, price)
}
