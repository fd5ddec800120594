package dashboard

import (
	"context"
	"time"

	"lokl-mora-backend/internal/domain/mora"
	"lokl-mora-backend/internal/infrastructure/database"
	"lokl-mora-backend/internal/pkg/clock"

	"github.com/shopspring/decimal"
)

type Service struct {
	Repo  *database.Repository
	Clock clock.Clock
}

// Stats is the headline block of the arrears dashboard.
type Stats struct {
	TotalIncome              float64 `json:"totalIncome"`
	LastMonthIncome          float64 `json:"lastMonthIncome"`
	ThisMonthIncome          float64 `json:"thisMonthIncome"`
	TotalActiveSubscriptions int64   `json:"totalActiveSubscriptions"`
	NewSubscriptions         int64   `json:"newSubscriptions"`
	OverdueRate              float64 `json:"overdueRate"`
	OverdueRateChange        float64 `json:"overdueRateChange"`
	MonthlyCollection        float64 `json:"monthlyCollection"`
	MonthlyCollectionChange  float64 `json:"monthlyCollectionChange"`
}

// LastMonthCutoff is the grace day of the current month: the moment last month's installments
// turned overdue.
func LastMonthCutoff(c clock.Clock, now time.Time) time.Time {
	return c.MonthStart(now, 0).AddDate(0, 0, mora.GraceDay-1)
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	now := s.Clock.Now()
	thisMonth := s.Clock.MonthStart(now, 0)
	lastMonth := s.Clock.MonthStart(now, -1)
	nextMonth := s.Clock.MonthStart(now, 1)

	total, err := s.Repo.ApprovedIncome(ctx, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	current, err := s.Repo.ApprovedIncome(ctx, thisMonth, nextMonth)
	if err != nil {
		return nil, err
	}
	previous, err := s.Repo.ApprovedIncome(ctx, lastMonth, thisMonth)
	if err != nil {
		return nil, err
	}
	active, err := s.Repo.CountSubscriptions(ctx, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	fresh, err := s.Repo.CountSubscriptions(ctx, thisMonth, nextMonth)
	if err != nil {
		return nil, err
	}

	invs, err := s.Repo.Subscriptions(ctx, database.DueWindow{})
	if err != nil {
		return nil, err
	}
	rate := mora.OverdueRate(invs, now, time.Time{})

	cutoff := LastMonthCutoff(s.Clock, now)
	before, err := s.Repo.SubscriptionsBefore(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	previousRate := mora.OverdueRate(before, cutoff, cutoff)

	change := decimal.Zero
	if !previous.IsZero() {
		change = current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100))
	}

	return &Stats{
		TotalIncome:              total.InexactFloat64(),
		LastMonthIncome:          previous.InexactFloat64(),
		ThisMonthIncome:          current.InexactFloat64(),
		TotalActiveSubscriptions: active,
		NewSubscriptions:         fresh,
		OverdueRate:              rate,
		OverdueRateChange:        rate - previousRate,
		MonthlyCollection:        current.InexactFloat64(),
		MonthlyCollectionChange:  change.InexactFloat64(),
	}, nil
}
