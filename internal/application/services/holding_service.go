package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bimakw/portfolio-tracker/internal/domain/entities"
	"github.com/bimakw/portfolio-tracker/internal/domain/repositories"
)

// PriceResolver prices a single holding
type PriceResolver interface {
	ResolvePrice(ctx context.Context, h entities.Holding) entities.PriceQuote
}

// HoldingService provides business logic for the three holding kinds
type HoldingService struct {
	holdingRepo repositories.HoldingRepository
	prices      PriceResolver
	logger      *zap.Logger
	now         func() time.Time
}

// NewHoldingService creates a new holding service
func NewHoldingService(
	holdingRepo repositories.HoldingRepository,
	prices PriceResolver,
	logger *zap.Logger,
) *HoldingService {
	return &HoldingService{
		holdingRepo: holdingRepo,
		prices:      prices,
		logger:      logger,
		now:         utcNow,
	}
}

// utcNow truncates to microseconds so values survive a round trip through Postgres
func utcNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// CreateHoldingInput is the request body for adding a holding.
// Symbol and PurchasePrice apply to crypto and stocks; URL and CSSSelector to coins.
// Amounts are pointers so a missing or null value can be told apart from zero.
type CreateHoldingInput struct {
	Name          string           `json:"name"`
	Symbol        string           `json:"symbol"`
	URL           string           `json:"url"`
	CSSSelector   string           `json:"css_selector"`
	Quantity      *decimal.Decimal `json:"quantity"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
}

// HoldingDTO is the API representation of a holding
type HoldingDTO struct {
	ID            string   `json:"id"`
	UserID        string   `json:"user_id"`
	Name          string   `json:"name"`
	Symbol        string   `json:"symbol,omitempty"`
	URL           string   `json:"url,omitempty"`
	CSSSelector   string   `json:"css_selector,omitempty"`
	Quantity      float64  `json:"quantity"`
	PurchasePrice *float64 `json:"purchase_price,omitempty"`
	CreatedAt     string   `json:"created_at"`
}

// HoldingPriceDTO is the API representation of a holding's current value.
// Crypto and stocks are labelled by symbol, coins by name.
type HoldingPriceDTO struct {
	Symbol          string  `json:"symbol,omitempty"`
	Name            string  `json:"name,omitempty"`
	CurrentPriceEUR float64 `json:"current_price_eur"`
	TotalValueEUR   float64 `json:"total_value_eur"`
}

// Create validates and stores a new holding for ownerID
func (s *HoldingService) Create(ctx context.Context, ownerID string, kind entities.HoldingKind, input CreateHoldingInput) (*HoldingDTO, error) {
	if !kind.Valid() {
		return nil, invalid("kind", "is not supported")
	}
	if strings.TrimSpace(ownerID) == "" {
		return nil, invalid("owner_id", "must not be empty")
	}
	if err := validateHolding(kind, &input); err != nil {
		return nil, err
	}

	h := &entities.Holding{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Kind:      kind,
		Name:      input.Name,
		Quantity:  *input.Quantity,
		CreatedAt: s.now(),
	}
	if kind == entities.KindCoin {
		h.URL = input.URL
		h.CSSSelector = input.CSSSelector
	} else {
		h.Symbol = strings.ToUpper(input.Symbol)
		h.PurchasePrice = *input.PurchasePrice
	}

	if err := s.holdingRepo.Create(ctx, h); err != nil {
		return nil, fmt.Errorf("failed to create %s holding: %w", kind, err)
	}

	s.logger.Debug("Created holding",
		zap.String("kind", string(kind)),
		zap.String("id", h.ID),
		zap.String("user_id", ownerID),
	)

	dto := toHoldingDTO(h)
	return &dto, nil
}

// List returns the owner's holdings of one kind, oldest first
func (s *HoldingService) List(ctx context.Context, ownerID string, kind entities.HoldingKind) ([]HoldingDTO, error) {
	holdings, err := s.holdingRepo.ListByOwner(ctx, ownerID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s holdings: %w", kind, err)
	}

	result := make([]HoldingDTO, len(holdings))
	for i := range holdings {
		result[i] = toHoldingDTO(&holdings[i])
	}
	return result, nil
}

// Delete removes one of the owner's holdings
func (s *HoldingService) Delete(ctx context.Context, ownerID string, kind entities.HoldingKind, id string) error {
	deleted, err := s.holdingRepo.Delete(ctx, ownerID, kind, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s holding: %w", kind, err)
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// CurrentPrice prices one of the owner's holdings
func (s *HoldingService) CurrentPrice(ctx context.Context, ownerID string, kind entities.HoldingKind, id string) (*HoldingPriceDTO, error) {
	h, err := s.holdingRepo.GetByID(ctx, ownerID, kind, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s holding: %w", kind, err)
	}
	if h == nil {
		return nil, ErrNotFound
	}

	quote := s.prices.ResolvePrice(ctx, *h)
	if !quote.Available {
		return nil, fmt.Errorf("%w: %s %s", ErrPriceUnavailable, quote.Source, quote.Reason)
	}

	dto := &HoldingPriceDTO{
		CurrentPriceEUR: quote.UnitPrice.InexactFloat64(),
		TotalValueEUR:   quote.ValueOf(h.Quantity).Round(2).InexactFloat64(),
	}
	if kind == entities.KindCoin {
		dto.Name = h.Name
	} else {
		dto.Symbol = h.Symbol
	}
	return dto, nil
}

func validateHolding(kind entities.HoldingKind, input *CreateHoldingInput) error {
	input.Name = strings.TrimSpace(input.Name)
	input.Symbol = strings.TrimSpace(input.Symbol)
	input.URL = strings.TrimSpace(input.URL)
	input.CSSSelector = strings.TrimSpace(input.CSSSelector)

	if input.Name == "" {
		return invalid("name", "must not be empty")
	}
	if input.Quantity == nil {
		return invalid("quantity", "is required")
	}
	if input.Quantity.IsNegative() {
		return invalid("quantity", "must not be negative")
	}

	if kind == entities.KindCoin {
		u, err := url.Parse(input.URL)
		if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return invalid("url", "must be an absolute http(s) URL")
		}
		if input.CSSSelector == "" {
			return invalid("css_selector", "must not be empty")
		}
		return nil
	}

	if input.Symbol == "" {
		return invalid("symbol", "must not be empty")
	}
	if input.PurchasePrice == nil {
		return invalid("purchase_price", "is required")
	}
	if input.PurchasePrice.IsNegative() {
		return invalid("purchase_price", "must not be negative")
	}
	return nil
}

func toHoldingDTO(h *entities.Holding) HoldingDTO {
	dto := HoldingDTO{
		ID:          h.ID,
		UserID:      h.OwnerID,
		Name:        h.Name,
		Symbol:      h.Symbol,
		URL:         h.URL,
		CSSSelector: h.CSSSelector,
		Quantity:    h.Quantity.InexactFloat64(),
		CreatedAt:   h.CreatedAt.Format(time.RFC3339Nano),
	}
	if h.Kind != entities.KindCoin {
		p := h.PurchasePrice.InexactFloat64()
		dto.PurchasePrice = &p
	}
	return dto
}
