package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bimakw/portfolio-tracker/internal/domain/entities"
	"github.com/bimakw/portfolio-tracker/internal/domain/repositories"
)

// PortfolioService values a user's holdings in EUR
type PortfolioService struct {
	holdingRepo repositories.HoldingRepository
	prices      PriceResolver
	concurrency int
	logger      *zap.Logger
}

// NewPortfolioService creates a new portfolio service.
// concurrency bounds the number of price lookups in flight per overview.
func NewPortfolioService(
	holdingRepo repositories.HoldingRepository,
	prices PriceResolver,
	concurrency int,
	logger *zap.Logger,
) *PortfolioService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &PortfolioService{
		holdingRepo: holdingRepo,
		prices:      prices,
		concurrency: concurrency,
		logger:      logger,
	}
}

// OverviewDTO is the API representation of a portfolio valuation
type OverviewDTO struct {
	TotalValueEUR  float64 `json:"total_value_eur"`
	CryptoValueEUR float64 `json:"crypto_value_eur"`
	StocksValueEUR float64 `json:"stocks_value_eur"`
	CoinsValueEUR  float64 `json:"coins_value_eur"`
	CryptoCount    int     `json:"crypto_count"`
	StocksCount    int     `json:"stocks_count"`
	CoinsCount     int     `json:"coins_count"`
}

// Overview prices every holding of ownerID and sums the values per kind.
// Holdings without a price count but contribute nothing.
func (s *PortfolioService) Overview(ctx context.Context, ownerID string) (*entities.PortfolioSnapshot, error) {
	var all []entities.Holding
	counts := make(map[entities.HoldingKind]int, len(entities.HoldingKinds))
	for _, kind := range entities.HoldingKinds {
		holdings, err := s.holdingRepo.ListByOwner(ctx, ownerID, kind)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s holdings: %w", kind, err)
		}
		for i := range holdings {
			holdings[i].Kind = kind
		}
		counts[kind] = len(holdings)
		all = append(all, holdings...)
	}

	values, unavailable := s.valueAll(ctx, all)

	subtotals := make(map[entities.HoldingKind]decimal.Decimal, len(entities.HoldingKinds))
	for i, h := range all {
		subtotals[h.Kind] = subtotals[h.Kind].Add(values[i])
	}
	for kind, v := range subtotals {
		subtotals[kind] = v.Round(2)
	}

	snapshot := &entities.PortfolioSnapshot{
		CryptoValue: subtotals[entities.KindCrypto],
		StocksValue: subtotals[entities.KindStock],
		CoinsValue:  subtotals[entities.KindCoin],
		CryptoCount: counts[entities.KindCrypto],
		StocksCount: counts[entities.KindStock],
		CoinsCount:  counts[entities.KindCoin],
	}
	snapshot.TotalValue = snapshot.CryptoValue.Add(snapshot.StocksValue).Add(snapshot.CoinsValue)

	if unavailable > 0 {
		s.logger.Debug("Overview has unpriced holdings",
			zap.String("user_id", ownerID),
			zap.Int("unavailable", unavailable),
		)
	}
	return snapshot, nil
}

// GetOverview returns the API representation of Overview
func (s *PortfolioService) GetOverview(ctx context.Context, ownerID string) (*OverviewDTO, error) {
	snapshot, err := s.Overview(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &OverviewDTO{
		TotalValueEUR:  snapshot.TotalValue.InexactFloat64(),
		CryptoValueEUR: snapshot.CryptoValue.InexactFloat64(),
		StocksValueEUR: snapshot.StocksValue.InexactFloat64(),
		CoinsValueEUR:  snapshot.CoinsValue.InexactFloat64(),
		CryptoCount:    snapshot.CryptoCount,
		StocksCount:    snapshot.StocksCount,
		CoinsCount:     snapshot.CoinsCount,
	}, nil
}

// valueAll prices holdings concurrently. values[i] belongs to holdings[i].
func (s *PortfolioService) valueAll(ctx context.Context, holdings []entities.Holding) ([]decimal.Decimal, int) {
	values := make([]decimal.Decimal, len(holdings))
	available := make([]bool, len(holdings))

	// Resolution never fails, so the group only bounds concurrency
	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for i := range holdings {
		i := i
		g.Go(func() error {
			quote := s.prices.ResolvePrice(ctx, holdings[i])
			values[i] = quote.ValueOf(holdings[i].Quantity)
			available[i] = quote.Available
			return nil
		})
	}
	_ = g.Wait()

	missing := 0
	for _, ok := range available {
		if !ok {
			missing++
		}
	}
	return values, missing
}
