package repositories

import (
	"context"

	"github.com/bimakw/portfolio-tracker/internal/domain/entities"
)

// HistoryRepository defines the interface for snapshot history persistence.
// Records are append-only.
type HistoryRepository interface {
	// Create persists a new history record
	Create(ctx context.Context, record *entities.HistoryRecord) error

	// ListByOwner returns all of the owner's records, newest first
	ListByOwner(ctx context.Context, ownerID string) ([]entities.HistoryRecord, error)
}
