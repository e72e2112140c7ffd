package repositories

import (
	"context"

	"github.com/bimakw/portfolio-tracker/internal/domain/entities"
)

// HoldingRepository defines the interface for holding persistence.
// Every query is scoped to a single owner.
type HoldingRepository interface {
	// Create persists a new holding
	Create(ctx context.Context, holding *entities.Holding) error

	// ListByOwner returns the owner's holdings of one kind, oldest first
	ListByOwner(ctx context.Context, ownerID string, kind entities.HoldingKind) ([]entities.Holding, error)

	// GetByID returns nil when the holding does not exist for the owner
	GetByID(ctx context.Context, ownerID string, kind entities.HoldingKind, id string) (*entities.Holding, error)

	// Delete removes a holding and reports whether it existed
	Delete(ctx context.Context, ownerID string, kind entities.HoldingKind, id string) (bool, error)

	// ListOwners returns every owner id that has at least one holding
	ListOwners(ctx context.Context) ([]string, error)
}
