package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/bimakw/portfolio-tracker/internal/domain/entities"
	"github.com/bimakw/portfolio-tracker/internal/infrastructure/authprovider"
	"github.com/bimakw/portfolio-tracker/internal/infrastructure/memory"
)

type MockCall struct {
	Method string
	Args   []interface{}
}

// callLog records calls made to a mock
type callLog struct {
	mu    sync.Mutex
	Calls []MockCall
}

func (c *callLog) record(method string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls = append(c.Calls, MockCall{Method: method, Args: args})
}

// CallCount returns how many times method was called
func (c *callLog) CallCount(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, call := range c.Calls {
		if call.Method == method {
			n++
		}
	}
	return n
}

// MockHoldingRepository is a mock implementation of HoldingRepository.
// Without hooks it behaves like the memory driver.
type MockHoldingRepository struct {
	callLog
	store *memory.HoldingRepo

	// Function hooks for custom behavior
	CreateFunc      func(ctx context.Context, h *entities.Holding) error
	ListByOwnerFunc func(ctx context.Context, ownerID string, kind entities.HoldingKind) ([]entities.Holding, error)
	GetByIDFunc     func(ctx context.Context, ownerID string, kind entities.HoldingKind, id string) (*entities.Holding, error)
	DeleteFunc      func(ctx context.Context, ownerID string, kind entities.HoldingKind, id string) (bool, error)
	ListOwnersFunc  func(ctx context.Context) ([]string, error)
}

func NewMockHoldingRepository() *MockHoldingRepository {
	return &MockHoldingRepository{store: memory.NewHoldingRepo()}
}

func (m *MockHoldingRepository) Create(ctx context.Context, h *entities.Holding) error {
	m.record("Create", h)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, h)
	}
	return m.store.Create(ctx, h)
}

func (m *MockHoldingRepository) ListByOwner(ctx context.Context, ownerID string, kind entities.HoldingKind) ([]entities.Holding, error) {
	m.record("ListByOwner", ownerID, kind)
	if m.ListByOwnerFunc != nil {
		return m.ListByOwnerFunc(ctx, ownerID, kind)
	}
	return m.store.ListByOwner(ctx, ownerID, kind)
}

func (m *MockHoldingRepository) GetByID(ctx context.Context, ownerID string, kind entities.HoldingKind, id string) (*entities.Holding, error) {
	m.record("GetByID", ownerID, kind, id)
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, ownerID, kind, id)
	}
	return m.store.GetByID(ctx, ownerID, kind, id)
}

func (m *MockHoldingRepository) Delete(ctx context.Context, ownerID string, kind entities.HoldingKind, id string) (bool, error) {
	m.record("Delete", ownerID, kind, id)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, ownerID, kind, id)
	}
	return m.store.Delete(ctx, ownerID, kind, id)
}

func (m *MockHoldingRepository) ListOwners(ctx context.Context) ([]string, error) {
	m.record("ListOwners")
	if m.ListOwnersFunc != nil {
		return m.ListOwnersFunc(ctx)
	}
	return m.store.ListOwners(ctx)
}

// AddHoldings stores holdings without recording calls
func (m *MockHoldingRepository) AddHoldings(holdings ...entities.Holding) {
	for i := range holdings {
		_ = m.store.Create(context.Background(), &holdings[i])
	}
}

// MockHistoryRepository is a mock implementation of HistoryRepository
type MockHistoryRepository struct {
	callLog
	store *memory.HistoryRepo

	CreateFunc      func(ctx context.Context, rec *entities.HistoryRecord) error
	ListByOwnerFunc func(ctx context.Context, ownerID string) ([]entities.HistoryRecord, error)
}

func NewMockHistoryRepository() *MockHistoryRepository {
	return &MockHistoryRepository{store: memory.NewHistoryRepo()}
}

func (m *MockHistoryRepository) Create(ctx context.Context, rec *entities.HistoryRecord) error {
	m.record("Create", rec)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, rec)
	}
	return m.store.Create(ctx, rec)
}

func (m *MockHistoryRepository) ListByOwner(ctx context.Context, ownerID string) ([]entities.HistoryRecord, error) {
	m.record("ListByOwner", ownerID)
	if m.ListByOwnerFunc != nil {
		return m.ListByOwnerFunc(ctx, ownerID)
	}
	return m.store.ListByOwner(ctx, ownerID)
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	callLog
	store *memory.UserRepo

	GetByIDFunc       func(ctx context.Context, userID string) (*entities.User, error)
	GetByEmailFunc    func(ctx context.Context, email string) (*entities.User, error)
	CreateFunc        func(ctx context.Context, user *entities.User) error
	UpdateProfileFunc func(ctx context.Context, userID, name string, picture *string) error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{store: memory.NewUserRepo()}
}

func (m *MockUserRepository) GetByID(ctx context.Context, userID string) (*entities.User, error) {
	m.record("GetByID", userID)
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, userID)
	}
	return m.store.GetByID(ctx, userID)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	m.record("GetByEmail", email)
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return m.store.GetByEmail(ctx, email)
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	m.record("Create", user)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return m.store.Create(ctx, user)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, userID, name string, picture *string) error {
	m.record("UpdateProfile", userID, name, picture)
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, userID, name, picture)
	}
	return m.store.UpdateProfile(ctx, userID, name, picture)
}

// AddUser stores a user without recording calls
func (m *MockUserRepository) AddUser(user *entities.User) {
	_ = m.store.Create(context.Background(), user)
}

// MockSessionRepository is a mock implementation of SessionRepository
type MockSessionRepository struct {
	callLog
	store *memory.SessionRepo

	CreateFunc     func(ctx context.Context, s *entities.Session) error
	GetByTokenFunc func(ctx context.Context, token string) (*entities.Session, error)
	DeleteFunc     func(ctx context.Context, token string) error
}

func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{store: memory.NewSessionRepo()}
}

func (m *MockSessionRepository) Create(ctx context.Context, s *entities.Session) error {
	m.record("Create", s)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, s)
	}
	return m.store.Create(ctx, s)
}

func (m *MockSessionRepository) GetByToken(ctx context.Context, token string) (*entities.Session, error) {
	m.record("GetByToken", token)
	if m.GetByTokenFunc != nil {
		return m.GetByTokenFunc(ctx, token)
	}
	return m.store.GetByToken(ctx, token)
}

func (m *MockSessionRepository) Delete(ctx context.Context, token string) error {
	m.record("Delete", token)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, token)
	}
	return m.store.Delete(ctx, token)
}

// AddSession stores a session without recording calls
func (m *MockSessionRepository) AddSession(s *entities.Session) {
	_ = m.store.Create(context.Background(), s)
}

// ErrSourceDown is returned by fake price sources that have no price
var ErrSourceDown = errors.New("source down")

// FakePriceSources implements every outbound price and rate source from fixed tables.
// Unknown keys fail with ErrSourceDown.
type FakePriceSources struct {
	callLog
	mu sync.RWMutex

	Crypto  map[string]decimal.Decimal // by symbol
	Stocks  map[string]decimal.Decimal // by ticker
	Pages   map[string]decimal.Decimal // by URL
	Rate    *decimal.Decimal           // nil means the rate service is down
	FailAll bool
}

func NewFakePriceSources() *FakePriceSources {
	return &FakePriceSources{
		Crypto: make(map[string]decimal.Decimal),
		Stocks: make(map[string]decimal.Decimal),
		Pages:  make(map[string]decimal.Decimal),
	}
}

// SetRate makes USDToEUR answer rate
func (f *FakePriceSources) SetRate(rate string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := decimal.RequireFromString(rate)
	f.Rate = &r
}

func (f *FakePriceSources) QuotePrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	f.record("QuotePrice", symbol)
	return f.lookup(f.Crypto, symbol)
}

func (f *FakePriceSources) LastClose(ctx context.Context, ticker string) (decimal.Decimal, error) {
	f.record("LastClose", ticker)
	return f.lookup(f.Stocks, ticker)
}

func (f *FakePriceSources) ScrapePrice(ctx context.Context, pageURL, selector string) (decimal.Decimal, error) {
	f.record("ScrapePrice", pageURL, selector)
	return f.lookup(f.Pages, pageURL)
}

func (f *FakePriceSources) USDToEUR(ctx context.Context) (decimal.Decimal, error) {
	f.record("USDToEUR")
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.FailAll || f.Rate == nil {
		return decimal.Decimal{}, ErrSourceDown
	}
	return *f.Rate, nil
}

func (f *FakePriceSources) lookup(table map[string]decimal.Decimal, key string) (decimal.Decimal, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.FailAll {
		return decimal.Decimal{}, ErrSourceDown
	}
	p, ok := table[key]
	if !ok {
		return decimal.Decimal{}, ErrSourceDown
	}
	return p, nil
}

// MockSessionProvider is a mock of the external login provider
type MockSessionProvider struct {
	callLog

	SessionDataFunc func(ctx context.Context, sessionID string) (*authprovider.SessionData, error)
}

func (m *MockSessionProvider) SessionData(ctx context.Context, sessionID string) (*authprovider.SessionData, error) {
	m.record("SessionData", sessionID)
	if m.SessionDataFunc != nil {
		return m.SessionDataFunc(ctx, sessionID)
	}
	return nil, authprovider.ErrRejected
}

// MockHealthChecker is a mock implementation of HealthChecker
type MockHealthChecker struct {
	mu sync.RWMutex

	Healthy bool
	Error   error
	Calls   []MockCall
}

func NewMockHealthChecker(healthy bool) *MockHealthChecker {
	var err error
	if !healthy {
		err = errors.New("health check failed")
	}
	return &MockHealthChecker{
		Healthy: healthy,
		Error:   err,
		Calls:   make([]MockCall, 0),
	}
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "HealthCheck", Args: nil})
	m.mu.Unlock()

	return m.Error
}

func (m *MockHealthChecker) SetHealthy(healthy bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Healthy = healthy
	if healthy {
		m.Error = nil
	} else {
		m.Error = errors.New("health check failed")
	}
}
