package subscriptions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lokl-mora-backend/internal/domain"
	"lokl-mora-backend/internal/domain/mora"
	"lokl-mora-backend/internal/infrastructure/database"
	"lokl-mora-backend/internal/pkg/apperrors"
	"lokl-mora-backend/internal/pkg/clock"

	"github.com/google/uuid"
)

type Service struct {
	Repo  *database.Repository
	Clock clock.Clock
}

// Summary is one subscription in the active/ending-soon panel.
type Summary struct {
	ID                    uuid.UUID               `json:"id"`
	Status                mora.SubscriptionStatus `json:"status"`
	Project               string                  `json:"project"`
	Investment            float64                 `json:"investment"`
	Units                 int                     `json:"units"`
	RemainingInstallments int                     `json:"remainingInstallments"`
	TotalInstallments     int                     `json:"totalInstallments"`
}

// ActiveResult splits subscriptions by whether their plan is about to end.
type ActiveResult struct {
	Active     []Summary `json:"active"`
	EndingSoon []Summary `json:"endingSoon"`
	Total      int       `json:"total"`
}

// Active lists every in-scope subscription. Completed plans are reported as active; only plans
// with one to three unpaid installments are ending soon.
func (s *Service) Active(ctx context.Context) (*ActiveResult, error) {
	invs, err := s.Repo.Subscriptions(ctx, database.DueWindow{})
	if err != nil {
		return nil, err
	}
	now := s.Clock.Now()
	out := &ActiveResult{Active: []Summary{}, EndingSoon: []Summary{}, Total: len(invs)}
	for _, inv := range invs {
		p := mora.ProgressOf(inv, now)
		sum := Summary{
			ID:                    inv.ID,
			Status:                mora.SubscriptionActive,
			Project:               inv.Project.DisplayName(),
			Investment:            inv.InvestmentValue.InexactFloat64(),
			Units:                 inv.UnitsQuantity,
			RemainingInstallments: p.RemainingInstallments,
			TotalInstallments:     p.TotalInstallments,
		}
		if p.Status == mora.SubscriptionEndingSoon {
			sum.Status = mora.SubscriptionEndingSoon
			out.EndingSoon = append(out.EndingSoon, sum)
			continue
		}
		out.Active = append(out.Active, sum)
	}
	return out, nil
}

// Filter narrows the subscriptions table. Empty strings and nil bounds match everything.
type Filter struct {
	Email      string
	Status     string
	Project    string
	OverdueMin *float64
	OverdueMax *float64
}

// Validate rejects unknown status values and inverted overdue bounds.
func (f Filter) Validate() error {
	switch mora.SubscriptionStatus(f.Status) {
	case "", mora.SubscriptionActive, mora.SubscriptionEndingSoon, mora.SubscriptionCompleted:
	default:
		return fmt.Errorf("%w: status must be active, ending_soon or completed", apperrors.ErrValidation)
	}
	if f.OverdueMin != nil && f.OverdueMax != nil && *f.OverdueMin > *f.OverdueMax {
		return fmt.Errorf("%w: overdueMin is greater than overdueMax", apperrors.ErrValidation)
	}
	return nil
}

// InstallmentRow is one line of a subscription's payment plan.
type InstallmentRow struct {
	ID          int                    `json:"id"`
	DueDate     time.Time              `json:"dueDate"`
	Amount      float64                `json:"amount"`
	Status      mora.InstallmentStatus `json:"status"`
	PaymentDate *time.Time             `json:"paymentDate"`
}

// Row is one subscription in the filterable table.
type Row struct {
	ID                uuid.UUID               `json:"id"`
	Status            mora.SubscriptionStatus `json:"status"`
	Project           string                  `json:"project"`
	Investment        float64                 `json:"investment"`
	Units             int                     `json:"units"`
	StartDate         time.Time               `json:"startDate"`
	EndDate           *time.Time              `json:"endDate"`
	TotalInstallments int                     `json:"totalInstallments"`
	Overdue           float64                 `json:"overdue"`
	TotalPaid         float64                 `json:"totalPaid"`
	TotalRemaining    float64                 `json:"totalRemaining"`
	Email             string                  `json:"email"`
	Installments      []InstallmentRow        `json:"installments"`
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(sub)))
}

// List returns subscriptions matching f with their plan detail at the current time.
func (s *Service) List(ctx context.Context, f Filter) ([]Row, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	invs, err := s.Repo.Subscriptions(ctx, database.DueWindow{})
	if err != nil {
		return nil, err
	}
	now := s.Clock.Now()
	out := []Row{}
	for _, inv := range invs {
		if f.Email != "" && !containsFold(inv.Email, f.Email) {
			continue
		}
		project := inv.Project.DisplayName()
		if f.Project != "" && (inv.Project == nil || !containsFold(project, f.Project)) {
			continue
		}
		p := mora.ProgressOf(inv, now)
		if f.Status != "" && string(p.Status) != f.Status {
			continue
		}
		overdue := p.Overdue.InexactFloat64()
		if f.OverdueMin != nil && overdue < *f.OverdueMin {
			continue
		}
		if f.OverdueMax != nil && overdue > *f.OverdueMax {
			continue
		}
		out = append(out, Row{
			ID:                inv.ID,
			Status:            p.Status,
			Project:           project,
			Investment:        inv.InvestmentValue.InexactFloat64(),
			Units:             inv.UnitsQuantity,
			StartDate:         inv.CreatedAt,
			EndDate:           p.EndDate,
			TotalInstallments: p.TotalInstallments,
			Overdue:           overdue,
			TotalPaid:         p.TotalPaid.InexactFloat64(),
			TotalRemaining:    p.TotalValue.Sub(p.TotalPaid).InexactFloat64(),
			Email:             inv.Email,
			Installments:      installmentRows(inv.Installments, now),
		})
	}
	return out, nil
}

func installmentRows(insts []domain.Installment, now time.Time) []InstallmentRow {
	rows := make([]InstallmentRow, 0, len(insts))
	for _, inst := range insts {
		row := InstallmentRow{
			ID:      inst.InstallmentNumber,
			DueDate: inst.PaymentDate,
			Amount:  inst.TotalValue.InexactFloat64(),
			Status:  mora.StatusOf(inst, now),
		}
		if at, ok := inst.FirstApprovedPayment(); ok {
			row.PaymentDate = &at
		}
		rows = append(rows, row)
	}
	return rows
}
