package testutil

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bimakw/portfolio-tracker/internal/domain/entities"
)

// Common test owners
const (
	AliceID = "user_a11ce0000001"
	BobID   = "user_b0b000000002"
)

var fixtureTime = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

// CreateTestHolding creates a crypto holding with default values
func CreateTestHolding(opts ...HoldingOption) entities.Holding {
	h := entities.Holding{
		ID:            "11111111-1111-4111-8111-111111111111",
		OwnerID:       AliceID,
		Kind:          entities.KindCrypto,
		Name:          "Bitcoin",
		Symbol:        "BTC",
		Quantity:      decimal.RequireFromString("0.5"),
		PurchasePrice: decimal.NewFromInt(30000),
		CreatedAt:     fixtureTime,
	}

	for _, opt := range opts {
		opt(&h)
	}

	return h
}

// CreateTestStock creates a stock holding
func CreateTestStock(opts ...HoldingOption) entities.Holding {
	base := []HoldingOption{
		HoldingWithID("22222222-2222-4222-8222-222222222222"),
		HoldingWithKind(entities.KindStock),
		HoldingWithName("Apple"),
		HoldingWithSymbol("AAPL"),
		HoldingWithQuantity("10"),
	}
	return CreateTestHolding(append(base, opts...)...)
}

// CreateTestCoin creates a scraped coin holding
func CreateTestCoin(opts ...HoldingOption) entities.Holding {
	base := []HoldingOption{
		HoldingWithID("33333333-3333-4333-8333-333333333333"),
		HoldingWithKind(entities.KindCoin),
		HoldingWithName("Krugerrand 1oz"),
		HoldingWithSymbol(""),
		HoldingWithURL("https://shop.example.com/krugerrand", ".price"),
		HoldingWithQuantity("2"),
		func(h *entities.Holding) { h.PurchasePrice = decimal.Zero },
	}
	return CreateTestHolding(append(base, opts...)...)
}

type HoldingOption func(*entities.Holding)

func HoldingWithID(id string) HoldingOption {
	return func(h *entities.Holding) {
		h.ID = id
	}
}

func HoldingWithOwner(ownerID string) HoldingOption {
	return func(h *entities.Holding) {
		h.OwnerID = ownerID
	}
}

func HoldingWithKind(kind entities.HoldingKind) HoldingOption {
	return func(h *entities.Holding) {
		h.Kind = kind
	}
}

func HoldingWithName(name string) HoldingOption {
	return func(h *entities.Holding) {
		h.Name = name
	}
}

func HoldingWithSymbol(symbol string) HoldingOption {
	return func(h *entities.Holding) {
		h.Symbol = symbol
	}
}

func HoldingWithURL(url, selector string) HoldingOption {
	return func(h *entities.Holding) {
		h.URL = url
		h.CSSSelector = selector
	}
}

func HoldingWithQuantity(q string) HoldingOption {
	return func(h *entities.Holding) {
		h.Quantity = decimal.RequireFromString(q)
	}
}

func HoldingWithCreatedAt(ts time.Time) HoldingOption {
	return func(h *entities.Holding) {
		h.CreatedAt = ts
	}
}

// CreateTestUser creates a password-less user
func CreateTestUser(opts ...UserOption) *entities.User {
	u := &entities.User{
		UserID:    AliceID,
		Email:     "alice@example.com",
		Name:      "Alice",
		CreatedAt: fixtureTime,
	}

	for _, opt := range opts {
		opt(u)
	}

	return u
}

type UserOption func(*entities.User)

func UserWithID(id string) UserOption {
	return func(u *entities.User) {
		u.UserID = id
	}
}

func UserWithEmail(email string) UserOption {
	return func(u *entities.User) {
		u.Email = email
	}
}

func UserWithPasswordHash(hash string) UserOption {
	return func(u *entities.User) {
		u.PasswordHash = &hash
	}
}

// Dec parses a decimal literal, panicking on bad input
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// DecPtr is Dec for optional amounts
func DecPtr(s string) *decimal.Decimal {
	d := Dec(s)
	return &d
}

func PointerTo[T any](v T) *T {
	return &v
}
