package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// HoldingKind identifies which price source values a holding
type HoldingKind string

const (
	KindCrypto HoldingKind = "crypto"
	KindStock  HoldingKind = "stock"
	KindCoin   HoldingKind = "coin"
)

// HoldingKinds lists every supported kind in reporting order
var HoldingKinds = []HoldingKind{KindCrypto, KindStock, KindCoin}

// Valid reports whether k is a supported kind
func (k HoldingKind) Valid() bool {
	switch k {
	case KindCrypto, KindStock, KindCoin:
		return true
	}
	return false
}

// Holding is a user-owned quantity of a crypto asset, a stock or a scraped collectible.
// Crypto and stock holdings are identified by Symbol; coin holdings by URL and CSSSelector.
type Holding struct {
	ID            string          `db:"asset_id"`
	OwnerID       string          `db:"user_id"`
	Kind          HoldingKind     `db:"-"`
	Name          string          `db:"name"`
	Symbol        string          `db:"symbol"`
	URL           string          `db:"url"`
	CSSSelector   string          `db:"css_selector"`
	Quantity      decimal.Decimal `db:"quantity"`
	PurchasePrice decimal.Decimal `db:"purchase_price"` // informational, never used in valuation
	CreatedAt     time.Time       `db:"created_at"`
}
