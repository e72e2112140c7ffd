package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/bimakw/portfolio-tracker/internal/domain/entities"
	"github.com/bimakw/portfolio-tracker/internal/domain/repositories"
)

// Ensure HistoryRepo implements HistoryRepository
var _ repositories.HistoryRepository = (*HistoryRepo)(nil)

// HistoryRepo implements HistoryRepository using PostgreSQL
type HistoryRepo struct {
	db *sqlx.DB
}

// NewHistoryRepo creates a new history repository
func NewHistoryRepo(db *sqlx.DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

// Create inserts a history record
func (r *HistoryRepo) Create(ctx context.Context, rec *entities.HistoryRecord) error {
	query := `
		INSERT INTO history_snapshots
			(snapshot_id, user_id, timestamp, total_value_eur, crypto_value_eur, stocks_value_eur, coins_value_eur)
		VALUES (:snapshot_id, :user_id, :timestamp, :total_value_eur, :crypto_value_eur, :stocks_value_eur, :coins_value_eur)
	`

	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("failed to insert history snapshot: %w", err)
	}
	return nil
}

// ListByOwner returns the owner's full history, newest first.
// The serial id breaks ties between snapshots taken in the same microsecond.
func (r *HistoryRepo) ListByOwner(ctx context.Context, ownerID string) ([]entities.HistoryRecord, error) {
	query := `
		SELECT snapshot_id, user_id, timestamp, total_value_eur, crypto_value_eur, stocks_value_eur, coins_value_eur
		FROM history_snapshots
		WHERE user_id = $1
		ORDER BY timestamp DESC, id DESC
	`

	var records []entities.HistoryRecord
	if err := r.db.SelectContext(ctx, &records, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list history snapshots: %w", err)
	}
	return records, nil
}
