// Package storage opens the repository backend selected by STORAGE_DRIVER.
package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bimakw/portfolio-tracker/internal/config"
	"github.com/bimakw/portfolio-tracker/internal/domain/repositories"
	"github.com/bimakw/portfolio-tracker/internal/infrastructure/database"
	"github.com/bimakw/portfolio-tracker/internal/infrastructure/memory"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Storage bundles the repositories of one backend
type Storage struct {
	Driver   string
	Holdings repositories.HoldingRepository
	History  repositories.HistoryRepository
	Users    repositories.UserRepository
	Sessions repositories.SessionRepository

	health healthChecker
	close  func() error
}

// Open connects to the configured backend.
// Postgres is migrated first when DB_AUTO_MIGRATE is set.
func Open(ctx context.Context, storageCfg config.StorageConfig, dbCfg config.DatabaseConfig, logger *zap.Logger) (*Storage, error) {
	switch storageCfg.Driver {
	case DriverPostgres:
		db, err := database.NewPostgresDB(dbCfg, logger)
		if err != nil {
			return nil, err
		}
		if dbCfg.AutoMigrate {
			if err := db.Migrate(ctx); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		return &Storage{
			Driver:   DriverPostgres,
			Holdings: database.NewHoldingRepo(db.DB()),
			History:  database.NewHistoryRepo(db.DB()),
			Users:    database.NewUserRepo(db.DB()),
			Sessions: database.NewSessionRepo(db.DB()),
			health:   db,
			close:    db.Close,
		}, nil

	case DriverMemory:
		logger.Warn("Using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return &Storage{
			Driver:   DriverMemory,
			Holdings: store.Holdings,
			History:  store.History,
			Users:    store.Users,
			Sessions: store.Sessions,
			health:   store,
			close:    func() error { return nil },
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", storageCfg.Driver)
	}
}

// HealthCheck checks the backend
func (s *Storage) HealthCheck(ctx context.Context) error {
	return s.health.HealthCheck(ctx)
}

// Close releases the backend's connections
func (s *Storage) Close() error {
	return s.close()
}
