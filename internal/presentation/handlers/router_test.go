package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/portfolio-tracker/internal/application/services"
	"github.com/bimakw/portfolio-tracker/internal/domain/entities"
	"github.com/bimakw/portfolio-tracker/internal/presentation/middleware"
	"github.com/bimakw/portfolio-tracker/internal/testutil"
)

const aliceToken = "alice-session-token"

// apiFixture wires the API routes over in-memory repositories and fixed price tables
type apiFixture struct {
	holdings *testutil.MockHoldingRepository
	history  *testutil.MockHistoryRepository
	users    *testutil.MockUserRepository
	sessions *testutil.MockSessionRepository
	provider *testutil.MockSessionProvider
	sources  *testutil.FakePriceSources
	router   chi.Router
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	logger := zap.NewNop()

	f := &apiFixture{
		holdings: testutil.NewMockHoldingRepository(),
		history:  testutil.NewMockHistoryRepository(),
		users:    testutil.NewMockUserRepository(),
		sessions: testutil.NewMockSessionRepository(),
		provider: &testutil.MockSessionProvider{},
		sources:  testutil.NewFakePriceSources(),
	}
	f.sources.SetRate("0.9")

	fx := services.NewFXConverter(f.sources, nil, 0, logger)
	prices := services.NewPriceService(f.sources, f.sources, f.sources, fx, logger)
	holdingService := services.NewHoldingService(f.holdings, prices, logger)
	portfolioService := services.NewPortfolioService(f.holdings, prices, 4, logger)
	historyService := services.NewHistoryService(portfolioService, f.history, logger)
	authService := services.NewAuthService(f.users, f.sessions, f.provider, 7*24*time.Hour, logger)

	requireAuth := middleware.RequireAuth(authService, logger)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		NewAuthHandler(authService, true, logger).RegisterRoutes(r, requireAuth, middleware.CredentialRateLimiter(1000))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			for _, kind := range entities.HoldingKinds {
				NewHoldingHandler(holdingService, kind, logger).RegisterRoutes(r)
			}
			NewPortfolioHandler(portfolioService, historyService, logger).RegisterRoutes(r)
		})
	})
	f.router = r

	f.users.AddUser(testutil.CreateTestUser())
	f.sessions.AddSession(&entities.Session{
		Token:     aliceToken,
		UserID:    testutil.AliceID,
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	})
	return f
}

// do sends a request as Alice; an empty token sends it anonymously
func (f *apiFixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func assertError(t *testing.T, rec *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
	var body map[string]string
	decodeJSON(t, rec, &body)
	if body["error"] != message {
		t.Errorf("expected error %q, got %q", message, body["error"])
	}
}
