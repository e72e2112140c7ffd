package pricing

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bimakw/portfolio-tracker/internal/domain/entities"
)

// BinanceClient looks up spot prices from the Binance ticker endpoint
type BinanceClient struct {
	baseURL    string
	apiKey     string
	quoteAsset string
	timeout    time.Duration
	httpClient *http.Client
}

// NewBinanceClient creates a new Binance client.
// quoteAsset is the currency symbols are paired against, e.g. USDT.
func NewBinanceClient(baseURL, apiKey, quoteAsset string, timeout time.Duration, httpClient *http.Client) *BinanceClient {
	return &BinanceClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		quoteAsset: strings.ToUpper(quoteAsset),
		timeout:    timeout,
		httpClient: httpClient,
	}
}

// QuotePrice returns the last price of symbol in the quote asset
func (c *BinanceClient) QuotePrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return decimal.Decimal{}, unavailable(entities.SourceBinance, entities.ReasonUnsupported, nil)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + "/api/v3/ticker/price?symbol=" + url.QueryEscape(symbol+c.quoteAsset)

	header := http.Header{}
	if c.apiKey != "" {
		header.Set("X-MBX-APIKEY", c.apiKey)
	}

	obj, err := fetchJSON(ctx, c.httpClient, entities.SourceBinance, endpoint, header)
	if err != nil {
		return decimal.Decimal{}, err
	}

	// {"symbol":"BTCUSDT","price":"50000.00000000"}
	val, err := lookup(entities.SourceBinance, obj, "$.price")
	if err != nil {
		return decimal.Decimal{}, err
	}
	return toDecimal(entities.SourceBinance, val)
}
