package pricing

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/bimakw/portfolio-tracker/internal/domain/entities"
)

// Scraper reads a price out of an arbitrary web page with a CSS selector
type Scraper struct {
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
}

// NewScraper creates a new page scraper
func NewScraper(userAgent string, timeout time.Duration, httpClient *http.Client) *Scraper {
	return &Scraper{
		userAgent:  userAgent,
		timeout:    timeout,
		httpClient: httpClient,
	}
}

// ScrapePrice fetches pageURL and parses the text of the first element matching selector
func (s *Scraper) ScrapePrice(ctx context.Context, pageURL, selector string) (decimal.Decimal, error) {
	u, err := url.Parse(pageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || strings.TrimSpace(selector) == "" {
		return decimal.Decimal{}, unavailable(entities.SourceScrape, entities.ReasonUnsupported, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	header := http.Header{}
	header.Set("User-Agent", s.userAgent)

	body, err := fetch(ctx, s.httpClient, entities.SourceScrape, u.String(), header)
	if err != nil {
		return decimal.Decimal{}, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return decimal.Decimal{}, unavailable(entities.SourceScrape, entities.ReasonPayload, err)
	}

	// An invalid selector matches nothing
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return decimal.Decimal{}, unavailable(entities.SourceScrape, entities.ReasonNoMatch, nil)
	}

	text := sel.Text()
	price, ok := ParsePriceText(text)
	if !ok {
		return decimal.Decimal{}, unavailable(entities.SourceScrape, entities.ReasonNoNumber, errors.New("no number in "+strings.TrimSpace(text)))
	}
	return price, nil
}
