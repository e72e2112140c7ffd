package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/bimakw/portfolio-tracker/internal/domain/entities"
	"github.com/bimakw/portfolio-tracker/internal/domain/repositories"
)

// Ensure HoldingRepo implements HoldingRepository
var _ repositories.HoldingRepository = (*HoldingRepo)(nil)

// HoldingRepo implements HoldingRepository using one PostgreSQL table per kind
type HoldingRepo struct {
	db *sqlx.DB
}

// NewHoldingRepo creates a new holding repository
func NewHoldingRepo(db *sqlx.DB) *HoldingRepo {
	return &HoldingRepo{db: db}
}

// holdingTable describes how a kind is laid out in the database.
// Coin rows have no symbol or purchase price, so the select list fills them in.
type holdingTable struct {
	name    string
	columns string
}

var holdingTables = map[entities.HoldingKind]holdingTable{
	entities.KindCrypto: {
		name:    "crypto_assets",
		columns: "asset_id, user_id, name, symbol, '' AS url, '' AS css_selector, quantity, purchase_price, created_at",
	},
	entities.KindStock: {
		name:    "stock_assets",
		columns: "asset_id, user_id, name, symbol, '' AS url, '' AS css_selector, quantity, purchase_price, created_at",
	},
	entities.KindCoin: {
		name:    "coin_assets",
		columns: "asset_id, user_id, name, '' AS symbol, url, css_selector, quantity, 0 AS purchase_price, created_at",
	},
}

func tableFor(kind entities.HoldingKind) (holdingTable, error) {
	t, ok := holdingTables[kind]
	if !ok {
		return holdingTable{}, fmt.Errorf("unknown holding kind %q", kind)
	}
	return t, nil
}

// Create inserts a holding into its kind's table
func (r *HoldingRepo) Create(ctx context.Context, h *entities.Holding) error {
	var (
		query string
		args  []interface{}
	)

	switch h.Kind {
	case entities.KindCrypto, entities.KindStock:
		t, _ := tableFor(h.Kind)
		query = `INSERT INTO ` + t.name + ` (asset_id, user_id, name, symbol, quantity, purchase_price, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`
		args = []interface{}{h.ID, h.OwnerID, h.Name, h.Symbol, h.Quantity, h.PurchasePrice, h.CreatedAt}
	case entities.KindCoin:
		query = `INSERT INTO coin_assets (asset_id, user_id, name, url, css_selector, quantity, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`
		args = []interface{}{h.ID, h.OwnerID, h.Name, h.URL, h.CSSSelector, h.Quantity, h.CreatedAt}
	default:
		return fmt.Errorf("unknown holding kind %q", h.Kind)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert %s holding: %w", h.Kind, err)
	}
	return nil
}

// ListByOwner retrieves the owner's holdings of one kind
func (r *HoldingRepo) ListByOwner(ctx context.Context, ownerID string, kind entities.HoldingKind) ([]entities.Holding, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + t.columns + ` FROM ` + t.name + ` WHERE user_id = $1 ORDER BY created_at, id`

	var holdings []entities.Holding
	if err := r.db.SelectContext(ctx, &holdings, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list %s holdings: %w", kind, err)
	}

	for i := range holdings {
		holdings[i].Kind = kind
	}
	return holdings, nil
}

// GetByID retrieves a single holding owned by ownerID
func (r *HoldingRepo) GetByID(ctx context.Context, ownerID string, kind entities.HoldingKind, id string) (*entities.Holding, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + t.columns + ` FROM ` + t.name + ` WHERE asset_id = $1 AND user_id = $2`

	var h entities.Holding
	if err := r.db.GetContext(ctx, &h, query, id, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s holding: %w", kind, err)
	}

	h.Kind = kind
	return &h, nil
}

// Delete removes a holding owned by ownerID
func (r *HoldingRepo) Delete(ctx context.Context, ownerID string, kind entities.HoldingKind, id string) (bool, error) {
	t, err := tableFor(kind)
	if err != nil {
		return false, err
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM `+t.name+` WHERE asset_id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("failed to delete %s holding: %w", kind, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

// ListOwners returns the distinct owners across all holding tables
func (r *HoldingRepo) ListOwners(ctx context.Context) ([]string, error) {
	query := `
		SELECT user_id FROM crypto_assets
		UNION
		SELECT user_id FROM stock_assets
		UNION
		SELECT user_id FROM coin_assets
		ORDER BY user_id
	`

	var owners []string
	if err := r.db.SelectContext(ctx, &owners, query); err != nil {
		return nil, fmt.Errorf("failed to list holding owners: %w", err)
	}
	return owners, nil
}
