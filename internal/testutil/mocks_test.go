package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/bimakw/portfolio-tracker/internal/domain/entities"
)

func TestMockHoldingRepository_OwnerScoping(t *testing.T) {
	repo := NewMockHoldingRepository()
	repo.AddHoldings(
		CreateTestHolding(),
		CreateTestStock(),
		CreateTestHolding(HoldingWithID("44444444-4444-4444-8444-444444444444"), HoldingWithOwner(BobID)),
	)

	ctx := context.Background()

	crypto, err := repo.ListByOwner(ctx, AliceID, entities.KindCrypto)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(crypto) != 1 {
		t.Errorf("expected 1 crypto holding for alice, got %d", len(crypto))
	}

	h, err := repo.GetByID(ctx, BobID, entities.KindStock, CreateTestStock().ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h != nil {
		t.Error("expected bob not to see alice's stock")
	}

	owners, err := repo.ListOwners(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(owners) != 2 {
		t.Errorf("expected 2 owners, got %v", owners)
	}

	// AddHoldings does not count as calls
	if len(repo.Calls) != 3 {
		t.Errorf("expected 3 calls, got %d", len(repo.Calls))
	}
	if repo.CallCount("ListOwners") != 1 {
		t.Errorf("expected 1 ListOwners call, got %d", repo.CallCount("ListOwners"))
	}
}

func TestMockHoldingRepository_Hooks(t *testing.T) {
	repo := NewMockHoldingRepository()
	repo.ListByOwnerFunc = func(ctx context.Context, ownerID string, kind entities.HoldingKind) ([]entities.Holding, error) {
		return nil, errors.New("database error")
	}

	if _, err := repo.ListByOwner(context.Background(), AliceID, entities.KindCoin); err == nil {
		t.Fatal("expected hook error, got nil")
	}
}

func TestFakePriceSources(t *testing.T) {
	ctx := context.Background()
	src := NewFakePriceSources()
	src.Crypto["BTC"] = Dec("50000")

	p, err := src.QuotePrice(ctx, "BTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Equal(Dec("50000")) {
		t.Errorf("expected 50000, got %s", p)
	}

	if _, err := src.LastClose(ctx, "AAPL"); !errors.Is(err, ErrSourceDown) {
		t.Errorf("expected ErrSourceDown, got %v", err)
	}
	if _, err := src.USDToEUR(ctx); !errors.Is(err, ErrSourceDown) {
		t.Errorf("expected rate to be down, got %v", err)
	}

	src.SetRate("0.9")
	rate, err := src.USDToEUR(ctx)
	if err != nil || !rate.Equal(Dec("0.9")) {
		t.Errorf("expected 0.9, got %s (%v)", rate, err)
	}

	src.FailAll = true
	if _, err := src.QuotePrice(ctx, "BTC"); err == nil {
		t.Error("expected failure when all sources are down")
	}
}
