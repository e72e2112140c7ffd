package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bimakw/portfolio-tracker/internal/config"
	"github.com/bimakw/portfolio-tracker/internal/domain/repositories"
	"github.com/bimakw/portfolio-tracker/internal/infrastructure/metrics"
)

// SnapshotScheduler periodically records a history snapshot for every owner
type SnapshotScheduler struct {
	history     *HistoryService
	holdingRepo repositories.HoldingRepository
	config      config.SnapshotConfig
	logger      *zap.Logger
	stats       *SchedulerStats
	stopCh      chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

// SchedulerStats tracks scheduler progress
type SchedulerStats struct {
	mu                sync.RWMutex
	Runs              int64
	SnapshotsRecorded int64
	ErrorCount        int64
	LastRunAt         time.Time
	LastRunDuration   time.Duration
}

// RunResult summarizes one pass over all owners
type RunResult struct {
	Owners   int
	Recorded int
	Failed   int
}

// NewSnapshotScheduler creates a new snapshot scheduler
func NewSnapshotScheduler(
	history *HistoryService,
	holdingRepo repositories.HoldingRepository,
	cfg config.SnapshotConfig,
	logger *zap.Logger,
) *SnapshotScheduler {
	return &SnapshotScheduler{
		history:     history,
		holdingRepo: holdingRepo,
		config:      cfg,
		logger:      logger,
		stats:       &SchedulerStats{},
		stopCh:      make(chan struct{}),
	}
}

// Start begins the snapshot loop
func (s *SnapshotScheduler) Start(ctx context.Context) {
	s.logger.Info("Starting snapshot scheduler",
		zap.Duration("interval", s.config.Interval),
		zap.Bool("run_on_start", s.config.RunOnStart),
		zap.Int("workers", s.config.Workers),
	)

	s.wg.Add(1)
	go s.runLoop(ctx)
}

// Stop gracefully stops the scheduler and waits for the current run
func (s *SnapshotScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping snapshot scheduler")
		close(s.stopCh)
	})
	s.wg.Wait()
}

// GetStats returns a copy of the current stats
func (s *SnapshotScheduler) GetStats() SchedulerStats {
	s.stats.mu.RLock()
	defer s.stats.mu.RUnlock()
	return SchedulerStats{
		Runs:              s.stats.Runs,
		SnapshotsRecorded: s.stats.SnapshotsRecorded,
		ErrorCount:        s.stats.ErrorCount,
		LastRunAt:         s.stats.LastRunAt,
		LastRunDuration:   s.stats.LastRunDuration,
	}
}

func (s *SnapshotScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	if s.config.RunOnStart {
		s.runLogged(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.runLogged(ctx)
		}
	}
}

func (s *SnapshotScheduler) runLogged(ctx context.Context) {
	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.Error("Snapshot run failed", zap.Error(err))
	}
}

// RunOnce records a snapshot for every owner that has holdings.
// Per-owner failures are logged and counted; only failing to list owners is an error.
func (s *SnapshotScheduler) RunOnce(ctx context.Context) (RunResult, error) {
	startTime := time.Now()

	owners, err := s.holdingRepo.ListOwners(ctx)
	if err != nil {
		s.incrementErrorCount()
		return RunResult{}, fmt.Errorf("failed to list owners: %w", err)
	}

	var recorded, failed int64

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)

	for _, ownerID := range owners {
		ownerID := ownerID
		g.Go(func() error {
			rec, err := s.history.RecordSnapshot(gCtx, ownerID)
			if err != nil {
				atomic.AddInt64(&failed, 1)
				s.logger.Error("Failed to record snapshot",
					zap.String("user_id", ownerID),
					zap.Error(err),
				)
				return nil
			}
			atomic.AddInt64(&recorded, 1)
			s.logger.Debug("Snapshot recorded",
				zap.String("user_id", ownerID),
				zap.String("id", rec.ID),
			)
			return nil
		})
	}
	_ = g.Wait()

	result := RunResult{Owners: len(owners), Recorded: int(recorded), Failed: int(failed)}
	took := time.Since(startTime)
	finishedAt := time.Now()

	s.stats.mu.Lock()
	s.stats.Runs++
	s.stats.SnapshotsRecorded += recorded
	s.stats.ErrorCount += failed
	s.stats.LastRunAt = finishedAt
	s.stats.LastRunDuration = took
	s.stats.mu.Unlock()

	metrics.ObserveSnapshotRun(result.Recorded, result.Failed, took, finishedAt)

	s.logger.Info("Snapshot run completed",
		zap.Int("owners", result.Owners),
		zap.Int("recorded", result.Recorded),
		zap.Int("failed", result.Failed),
		zap.Duration("duration", took),
	)
	return result, nil
}

func (s *SnapshotScheduler) incrementErrorCount() {
	s.stats.mu.Lock()
	defer s.stats.mu.Unlock()
	s.stats.ErrorCount++
}
