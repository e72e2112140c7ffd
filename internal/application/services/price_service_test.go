package services

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/bimakw/portfolio-tracker/internal/domain/entities"
	"github.com/bimakw/portfolio-tracker/internal/testutil"
)

func newTestPriceService(src *testutil.FakePriceSources) *PriceService {
	logger := zap.NewNop()
	fx := NewFXConverter(src, nil, 0, logger)
	return NewPriceService(src, src, src, fx, logger)
}

func TestPriceService_ResolvePrice(t *testing.T) {
	ctx := context.Background()

	src := testutil.NewFakePriceSources()
	src.SetRate("0.9")
	src.Crypto["BTC"] = testutil.Dec("50000")
	src.Stocks["AAPL"] = testutil.Dec("150")
	src.Pages["https://shop.example.com/krugerrand"] = testutil.Dec("45.99")

	service := newTestPriceService(src)

	tests := []struct {
		name      string
		holding   entities.Holding
		source    entities.PriceSource
		available bool
		price     string
		reason    entities.UnavailableReason
	}{
		{
			name:      "crypto converted from USD",
			holding:   testutil.CreateTestHolding(),
			source:    entities.SourceBinance,
			available: true,
			price:     "45000",
		},
		{
			name:      "stock converted from USD",
			holding:   testutil.CreateTestStock(),
			source:    entities.SourceYahoo,
			available: true,
			price:     "135",
		},
		{
			name:      "coin is already EUR",
			holding:   testutil.CreateTestCoin(),
			source:    entities.SourceScrape,
			available: true,
			price:     "45.99",
		},
		{
			name:    "unknown crypto symbol",
			holding: testutil.CreateTestHolding(testutil.HoldingWithSymbol("NOPE")),
			source:  entities.SourceBinance,
			reason:  entities.ReasonNetwork,
		},
		{
			name:    "unsupported kind",
			holding: testutil.CreateTestHolding(testutil.HoldingWithKind("bond")),
			reason:  entities.ReasonUnsupported,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote := service.ResolvePrice(ctx, tt.holding)

			if quote.Available != tt.available {
				t.Fatalf("expected available=%v, got %+v", tt.available, quote)
			}
			if quote.Source != tt.source {
				t.Errorf("expected source %q, got %q", tt.source, quote.Source)
			}
			if tt.available {
				if !quote.UnitPrice.Equal(testutil.Dec(tt.price)) {
					t.Errorf("expected price %s, got %s", tt.price, quote.UnitPrice)
				}
			} else if quote.Reason != tt.reason {
				t.Errorf("expected reason %q, got %q", tt.reason, quote.Reason)
			}
		})
	}
}

func TestPriceService_UsesFallbackRate(t *testing.T) {
	src := testutil.NewFakePriceSources()
	src.Crypto["BTC"] = testutil.Dec("100")

	quote := newTestPriceService(src).ResolvePrice(context.Background(), testutil.CreateTestHolding())

	if !quote.Available {
		t.Fatal("expected price to be available")
	}
	if !quote.UnitPrice.Equal(testutil.Dec("92")) {
		t.Errorf("expected 92, got %s", quote.UnitPrice)
	}
}

func TestPriceService_DoesNotConvertCoins(t *testing.T) {
	src := testutil.NewFakePriceSources()
	src.SetRate("0.5")
	src.Pages["https://shop.example.com/krugerrand"] = testutil.Dec("10")

	newTestPriceService(src).ResolvePrice(context.Background(), testutil.CreateTestCoin())

	if src.CallCount("USDToEUR") != 0 {
		t.Errorf("expected no FX lookup for coins, got %d", src.CallCount("USDToEUR"))
	}
}
