package pricing

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bimakw/portfolio-tracker/internal/domain/entities"
)

// sourceFX labels errors from the exchange-rate service
const sourceFX entities.PriceSource = "fx"

// ExchangeRateClient reads USD based rates from an exchangerate-api compatible endpoint
type ExchangeRateClient struct {
	url        string
	timeout    time.Duration
	httpClient *http.Client
}

// NewExchangeRateClient creates a new rate client for the latest-USD endpoint at url
func NewExchangeRateClient(url string, timeout time.Duration, httpClient *http.Client) *ExchangeRateClient {
	return &ExchangeRateClient{
		url:        url,
		timeout:    timeout,
		httpClient: httpClient,
	}
}

// USDToEUR returns how many EUR one USD buys
func (c *ExchangeRateClient) USDToEUR(ctx context.Context) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	obj, err := fetchJSON(ctx, c.httpClient, sourceFX, c.url, nil)
	if err != nil {
		return decimal.Decimal{}, err
	}

	// {"base":"USD","rates":{"EUR":0.92,...}}
	val, err := lookup(sourceFX, obj, "$.rates.EUR")
	if err != nil {
		return decimal.Decimal{}, err
	}

	rate, err := toDecimal(sourceFX, val)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if rate.IsZero() {
		return decimal.Decimal{}, unavailable(sourceFX, entities.ReasonPayload, nil)
	}
	return rate, nil
}
