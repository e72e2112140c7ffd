package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bimakw/portfolio-tracker/internal/domain/entities"
	"github.com/bimakw/portfolio-tracker/internal/domain/repositories"
)

// HistoryService records and lists portfolio valuation snapshots
type HistoryService struct {
	portfolio   *PortfolioService
	historyRepo repositories.HistoryRepository
	logger      *zap.Logger
	now         func() time.Time
}

// NewHistoryService creates a new history service
func NewHistoryService(
	portfolio *PortfolioService,
	historyRepo repositories.HistoryRepository,
	logger *zap.Logger,
) *HistoryService {
	return &HistoryService{
		portfolio:   portfolio,
		historyRepo: historyRepo,
		logger:      logger,
		now:         utcNow,
	}
}

// HistorySnapshotDTO is the API representation of a history record
type HistorySnapshotDTO struct {
	ID             string  `json:"id"`
	UserID         string  `json:"user_id"`
	Timestamp      string  `json:"timestamp"`
	TotalValueEUR  float64 `json:"total_value_eur"`
	CryptoValueEUR float64 `json:"crypto_value_eur"`
	StocksValueEUR float64 `json:"stocks_value_eur"`
	CoinsValueEUR  float64 `json:"coins_value_eur"`
}

// RecordSnapshot values the owner's portfolio now and stores the result
func (s *HistoryService) RecordSnapshot(ctx context.Context, ownerID string) (*entities.HistoryRecord, error) {
	snapshot, err := s.portfolio.Overview(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute overview: %w", err)
	}

	record := entities.NewHistoryRecord(uuid.NewString(), ownerID, s.now(), *snapshot)
	if err := s.historyRepo.Create(ctx, &record); err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}

	s.logger.Debug("Recorded snapshot",
		zap.String("user_id", ownerID),
		zap.String("id", record.ID),
		zap.String("total_value_eur", record.TotalValue.StringFixed(2)),
	)
	return &record, nil
}

// ListSnapshots returns every record of ownerID, newest first
func (s *HistoryService) ListSnapshots(ctx context.Context, ownerID string) ([]entities.HistoryRecord, error) {
	records, err := s.historyRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return records, nil
}

// ToHistorySnapshotDTO converts a record to its API representation
func ToHistorySnapshotDTO(r *entities.HistoryRecord) HistorySnapshotDTO {
	return HistorySnapshotDTO{
		ID:             r.ID,
		UserID:         r.OwnerID,
		Timestamp:      r.Timestamp.Format(time.RFC3339Nano),
		TotalValueEUR:  r.TotalValue.InexactFloat64(),
		CryptoValueEUR: r.CryptoValue.InexactFloat64(),
		StocksValueEUR: r.StocksValue.InexactFloat64(),
		CoinsValueEUR:  r.CoinsValue.InexactFloat64(),
	}
}
