package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// PortfolioSnapshot is a valuation of one user's holdings, in EUR rounded to cents
type PortfolioSnapshot struct {
	TotalValue  decimal.Decimal
	CryptoValue decimal.Decimal
	StocksValue decimal.Decimal
	CoinsValue  decimal.Decimal
	CryptoCount int
	StocksCount int
	CoinsCount  int
}

// HistoryRecord is a persisted, immutable snapshot
type HistoryRecord struct {
	ID          string          `db:"snapshot_id"`
	OwnerID     string          `db:"user_id"`
	Timestamp   time.Time       `db:"timestamp"`
	TotalValue  decimal.Decimal `db:"total_value_eur"`
	CryptoValue decimal.Decimal `db:"crypto_value_eur"`
	StocksValue decimal.Decimal `db:"stocks_value_eur"`
	CoinsValue  decimal.Decimal `db:"coins_value_eur"`
}

// NewHistoryRecord copies the snapshot values into a record
func NewHistoryRecord(id, ownerID string, ts time.Time, s PortfolioSnapshot) HistoryRecord {
	return HistoryRecord{
		ID:          id,
		OwnerID:     ownerID,
		Timestamp:   ts,
		TotalValue:  s.TotalValue,
		CryptoValue: s.CryptoValue,
		StocksValue: s.StocksValue,
		CoinsValue:  s.CoinsValue,
	}
}
