package analytics

import (
	"context"
	"time"

	"lokl-mora-backend/internal/domain"
	"lokl-mora-backend/internal/domain/mora"
	"lokl-mora-backend/internal/infrastructure/database"
	"lokl-mora-backend/internal/pkg/clock"

	"github.com/google/uuid"
)

type Service struct {
	Repo  *database.Repository
	Clock clock.Clock
}

// CurrentYear is the default analysis year.
func (s *Service) CurrentYear() int {
	return s.Clock.Now().Year()
}

// yearWindow widens the calendar year by a day on each side so that due dates stored in
// another zone still reach the engine, which filters on the exact year.
func (s *Service) yearWindow(year int) database.DueWindow {
	from, to := s.Clock.YearBounds(year)
	return database.DueWindow{From: from.AddDate(0, 0, -1), To: to.AddDate(0, 0, 1)}
}

// ExpectedVsActual returns the twelve monthly buckets of expected and collected money for year.
func (s *Service) ExpectedVsActual(ctx context.Context, year int) ([]mora.MonthlyFinancials, error) {
	invs, err := s.Repo.Subscriptions(ctx, s.yearWindow(year))
	if err != nil {
		return nil, err
	}
	return mora.ExpectedVsActual(invs, year), nil
}

// MonthlyOverdue returns monthly and accumulated overdue money for year.
func (s *Service) MonthlyOverdue(ctx context.Context, year int) ([]mora.MonthlyOverdue, error) {
	invs, err := s.Repo.Subscriptions(ctx, s.yearWindow(year))
	if err != nil {
		return nil, err
	}
	return mora.MonthlyOverdueSeries(invs, s.Clock.Now(), year), nil
}

// OverdueByProject rolls overdue money up to live projects. A nil year considers every installment.
func (s *Service) OverdueByProject(ctx context.Context, year *int) ([]mora.ProjectOverdue, error) {
	w := database.DueWindow{}
	if year != nil {
		w = s.yearWindow(*year)
	}
	invs, err := s.Repo.LiveProjectSubscriptions(ctx, w)
	if err != nil {
		return nil, err
	}
	return mora.OverdueByProject(GroupByProject(invs), s.Clock.Now(), year), nil
}

// GroupByProject regroups investments under their project in first-seen order. Investments whose
// project row is gone are kept under a placeholder carrying only the id.
func GroupByProject(invs []domain.Investment) []domain.Project {
	idx := map[uuid.UUID]int{}
	var out []domain.Project
	for _, inv := range invs {
		i, ok := idx[inv.ProjectID]
		if !ok {
			p := domain.Project{ID: inv.ProjectID}
			if inv.Project != nil {
				p.Name = inv.Project.Name
			}
			out = append(out, p)
			i = len(out) - 1
			idx[inv.ProjectID] = i
		}
		out[i].Investments = append(out[i].Investments, inv)
	}
	return out
}

// Now exposes the reference time used by the service.
func (s *Service) Now() time.Time {
	return s.Clock.Now()
}
