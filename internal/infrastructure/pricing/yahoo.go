package pricing

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bimakw/portfolio-tracker/internal/domain/entities"
)

// YahooClient reads daily closes from the Yahoo Finance chart API
type YahooClient struct {
	baseURL    string
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
}

// NewYahooClient creates a new Yahoo Finance client
func NewYahooClient(baseURL, userAgent string, timeout time.Duration, httpClient *http.Client) *YahooClient {
	return &YahooClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		timeout:    timeout,
		httpClient: httpClient,
	}
}

// LastClose returns the most recent daily close of ticker in its listing currency
func (c *YahooClient) LastClose(ctx context.Context, ticker string) (decimal.Decimal, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return decimal.Decimal{}, unavailable(entities.SourceYahoo, entities.ReasonUnsupported, nil)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + "/v8/finance/chart/" + url.PathEscape(ticker) + "?range=1d&interval=1d"

	header := http.Header{}
	header.Set("User-Agent", c.userAgent)

	obj, err := fetchJSON(ctx, c.httpClient, entities.SourceYahoo, endpoint, header)
	if err != nil {
		return decimal.Decimal{}, err
	}

	val, err := lookup(entities.SourceYahoo, obj, "$.chart.result[0].indicators.quote[0].close")
	if err != nil {
		return decimal.Decimal{}, err
	}

	// Closes can contain nulls for sessions still in progress
	closes, ok := val.([]interface{})
	if !ok {
		closes = []interface{}{val}
	}
	for i := len(closes) - 1; i >= 0; i-- {
		if closes[i] != nil {
			return toDecimal(entities.SourceYahoo, closes[i])
		}
	}
	return decimal.Decimal{}, unavailable(entities.SourceYahoo, entities.ReasonPayload, errors.New("no close price in range"))
}
