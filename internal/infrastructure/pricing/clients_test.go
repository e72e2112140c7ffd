package pricing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bimakw/portfolio-tracker/internal/domain/entities"
)

func assertReason(t *testing.T, err error, want entities.UnavailableReason) {
	t.Helper()
	var ue *UnavailableError
	if !errors.As(err, &ue) {
		t.Fatalf("expected *UnavailableError, got %v", err)
	}
	if ue.Reason != want {
		t.Errorf("expected reason %s, got %s (%v)", want, ue.Reason, err)
	}
}

func TestBinanceClient_QuotePrice(t *testing.T) {
	t.Run("returns price for symbol paired with quote asset", func(t *testing.T) {
		var gotSymbol, gotKey string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotSymbol = r.URL.Query().Get("symbol")
			gotKey = r.Header.Get("X-MBX-APIKEY")
			_, _ = w.Write([]byte(`{"symbol":"BTCUSDT","price":"50000.12000000"}`))
		}))
		defer srv.Close()

		c := NewBinanceClient(srv.URL, "key", "usdt", time.Second, srv.Client())
		price, err := c.QuotePrice(context.Background(), "btc")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotSymbol != "BTCUSDT" {
			t.Errorf("expected symbol BTCUSDT, got %s", gotSymbol)
		}
		if gotKey != "key" {
			t.Errorf("expected api key header, got %q", gotKey)
		}
		if !price.Equal(decimal.RequireFromString("50000.12")) {
			t.Errorf("expected 50000.12, got %s", price)
		}
	})

	t.Run("unknown symbol is a status failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
		}))
		defer srv.Close()

		c := NewBinanceClient(srv.URL, "", "USDT", time.Second, srv.Client())
		_, err := c.QuotePrice(context.Background(), "NOPE")
		assertReason(t, err, entities.ReasonStatus)
	})

	t.Run("malformed body is a payload failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"symbol":"BTCUSDT","price":"abc"}`))
		}))
		defer srv.Close()

		c := NewBinanceClient(srv.URL, "", "USDT", time.Second, srv.Client())
		_, err := c.QuotePrice(context.Background(), "BTC")
		assertReason(t, err, entities.ReasonPayload)
	})

	t.Run("timeout is a network failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer srv.Close()

		c := NewBinanceClient(srv.URL, "", "USDT", 50*time.Millisecond, srv.Client())
		_, err := c.QuotePrice(context.Background(), "BTC")
		assertReason(t, err, entities.ReasonNetwork)
	})
}

func TestYahooClient_LastClose(t *testing.T) {
	t.Run("returns last non-null close", func(t *testing.T) {
		var gotPath, gotUA string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotUA = r.Header.Get("User-Agent")
			_, _ = w.Write([]byte(`{"chart":{"result":[{"indicators":{"quote":[{"close":[148.5,150.25,null]}]}}],"error":null}}`))
		}))
		defer srv.Close()

		c := NewYahooClient(srv.URL, "Mozilla/5.0", time.Second, srv.Client())
		price, err := c.LastClose(context.Background(), "aapl")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotPath != "/v8/finance/chart/AAPL" {
			t.Errorf("unexpected path %s", gotPath)
		}
		if gotUA != "Mozilla/5.0" {
			t.Errorf("unexpected user agent %q", gotUA)
		}
		if !price.Equal(decimal.RequireFromString("150.25")) {
			t.Errorf("expected 150.25, got %s", price)
		}
	})

	t.Run("single close", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"chart":{"result":[{"indicators":{"quote":[{"close":[150]}]}}]}}`))
		}))
		defer srv.Close()

		c := NewYahooClient(srv.URL, "Mozilla/5.0", time.Second, srv.Client())
		price, err := c.LastClose(context.Background(), "AAPL")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !price.Equal(decimal.NewFromInt(150)) {
			t.Errorf("expected 150, got %s", price)
		}
	})

	t.Run("unknown ticker has no result", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found"}}}`))
		}))
		defer srv.Close()

		c := NewYahooClient(srv.URL, "Mozilla/5.0", time.Second, srv.Client())
		_, err := c.LastClose(context.Background(), "ZZZZ")
		assertReason(t, err, entities.ReasonPayload)
	})

	t.Run("all closes null", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"chart":{"result":[{"indicators":{"quote":[{"close":[null,null]}]}}]}}`))
		}))
		defer srv.Close()

		c := NewYahooClient(srv.URL, "Mozilla/5.0", time.Second, srv.Client())
		_, err := c.LastClose(context.Background(), "AAPL")
		assertReason(t, err, entities.ReasonPayload)
	})
}

func TestExchangeRateClient_USDToEUR(t *testing.T) {
	t.Run("reads EUR rate", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"base":"USD","rates":{"USD":1,"EUR":0.9134}}`))
		}))
		defer srv.Close()

		c := NewExchangeRateClient(srv.URL, time.Second, srv.Client())
		rate, err := c.USDToEUR(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !rate.Equal(decimal.RequireFromString("0.9134")) {
			t.Errorf("expected 0.9134, got %s", rate)
		}
	})

	t.Run("missing EUR rate", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"base":"USD","rates":{"USD":1}}`))
		}))
		defer srv.Close()

		c := NewExchangeRateClient(srv.URL, time.Second, srv.Client())
		_, err := c.USDToEUR(context.Background())
		assertReason(t, err, entities.ReasonPayload)
	})

	t.Run("server down", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		c := NewExchangeRateClient(srv.URL, time.Second, http.DefaultClient)
		_, err := c.USDToEUR(context.Background())
		assertReason(t, err, entities.ReasonNetwork)
	})
}

func TestScraper_ScrapePrice(t *testing.T) {
	page := `<html><body>
		<div class="product"><span class="price">45,99€</span></div>
		<div class="product"><span class="price">12,00€</span></div>
		<p id="note">no digits here</p>
	</body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "Mozilla/5.0" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	s := NewScraper("Mozilla/5.0", time.Second, srv.Client())
	ctx := context.Background()

	t.Run("first matching element", func(t *testing.T) {
		price, err := s.ScrapePrice(ctx, srv.URL+"/coin", ".product .price")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !price.Equal(decimal.RequireFromString("45.99")) {
			t.Errorf("expected 45.99, got %s", price)
		}
	})

	t.Run("selector matches nothing", func(t *testing.T) {
		_, err := s.ScrapePrice(ctx, srv.URL+"/coin", "#absent")
		assertReason(t, err, entities.ReasonNoMatch)
	})

	t.Run("element without number", func(t *testing.T) {
		_, err := s.ScrapePrice(ctx, srv.URL+"/coin", "#note")
		assertReason(t, err, entities.ReasonNoNumber)
	})

	t.Run("page not found", func(t *testing.T) {
		_, err := s.ScrapePrice(ctx, srv.URL+"/missing", ".price")
		assertReason(t, err, entities.ReasonStatus)
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		_, err := s.ScrapePrice(ctx, "ftp://example.com/coin", ".price")
		assertReason(t, err, entities.ReasonUnsupported)
	})
}

func TestReasonOf(t *testing.T) {
	if got := ReasonOf(unavailable(entities.SourceScrape, entities.ReasonNoMatch, nil)); got != entities.ReasonNoMatch {
		t.Errorf("expected no_match, got %s", got)
	}
	if got := ReasonOf(errors.New("boom")); got != entities.ReasonNetwork {
		t.Errorf("expected network, got %s", got)
	}
}
