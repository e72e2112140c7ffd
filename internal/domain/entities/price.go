package entities

import "github.com/shopspring/decimal"

// PriceSource names the external service a quote came from
type PriceSource string

const (
	SourceBinance PriceSource = "binance"
	SourceYahoo   PriceSource = "yahoo"
	SourceScrape  PriceSource = "scrape"
)

// UnavailableReason classifies why a price could not be resolved
type UnavailableReason string

const (
	ReasonNetwork     UnavailableReason = "network"
	ReasonStatus      UnavailableReason = "status"
	ReasonPayload     UnavailableReason = "payload"
	ReasonNoMatch     UnavailableReason = "no_match"
	ReasonNoNumber    UnavailableReason = "no_number"
	ReasonUnsupported UnavailableReason = "unsupported"
)

// PriceQuote is the result of a single price resolution.
// UnitPrice is in EUR and only meaningful when Available is true.
type PriceQuote struct {
	Source    PriceSource
	Available bool
	UnitPrice decimal.Decimal
	Reason    UnavailableReason
}

// AvailableQuote builds a successful quote
func AvailableQuote(source PriceSource, unitPrice decimal.Decimal) PriceQuote {
	return PriceQuote{Source: source, Available: true, UnitPrice: unitPrice}
}

// UnavailableQuote builds a quote for a price that could not be resolved
func UnavailableQuote(source PriceSource, reason UnavailableReason) PriceQuote {
	return PriceQuote{Source: source, Reason: reason}
}

// ValueOf returns the quote's contribution for quantity, zero when unavailable
func (q PriceQuote) ValueOf(quantity decimal.Decimal) decimal.Decimal {
	if !q.Available {
		return decimal.Zero
	}
	return q.UnitPrice.Mul(quantity)
}
