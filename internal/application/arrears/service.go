package arrears

import (
	"context"
	"sync"

	"lokl-mora-backend/internal/domain/mora"
	"lokl-mora-backend/internal/infrastructure/database"
	"lokl-mora-backend/internal/pkg/clock"

	"github.com/rs/zerolog/log"
)

// Service owns the users-in-arrears snapshot. Refreshes are serialized and readers never
// observe a half-written table.
type Service struct {
	Repo  *database.Repository
	Clock clock.Clock

	mu sync.RWMutex
}

// Refresh rebuilds the snapshot from source data and returns the number of rows written.
func (s *Service) Refresh(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *Service) refreshLocked(ctx context.Context) (int, error) {
	invs, err := s.Repo.Subscriptions(ctx, database.DueWindow{})
	if err != nil {
		return 0, err
	}
	rows := mora.BuildArrearsSnapshot(invs, s.Clock.Now())
	if err := s.Repo.ReplaceArrears(ctx, rows); err != nil {
		return 0, err
	}
	log.Info().Int("rows", len(rows)).Msg("Arrears snapshot refreshed")
	return len(rows), nil
}

// Snapshot returns the current rows joined with project name and investment value.
func (s *Service) Snapshot(ctx context.Context) ([]database.ArrearsRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(ctx)
}

func (s *Service) read(ctx context.Context) ([]database.ArrearsRow, error) {
	rows, err := s.Repo.ListArrears(ctx)
	if err != nil {
		return nil, err
	}
	now := s.Clock.Now()
	for i := range rows {
		rows[i].DaysInArrears = mora.DaysSince(rows[i].MoraStartDate, now)
	}
	return rows, nil
}

// RefreshAndRead rebuilds the snapshot and reads it back without letting another refresh
// interleave.
func (s *Service) RefreshAndRead(ctx context.Context) ([]database.ArrearsRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.refreshLocked(ctx); err != nil {
		return nil, err
	}
	return s.read(ctx)
}
