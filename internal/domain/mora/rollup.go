package mora

import (
	"sort"
	"time"

	"lokl-mora-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProjectOverdue is a project's share of the overdue money.
type ProjectOverdue struct {
	ProjectID  uuid.UUID `json:"projectId"`
	Name       string    `json:"name"`
	Amount     float64   `json:"amount"`
	Percentage int64     `json:"percentage"`
}

// InvestmentOverdue aggregates the overdue installments of one investment.
type InvestmentOverdue struct {
	Amount      decimal.Decimal
	Count       int
	EarliestDue time.Time
	HasArrears  bool
}

// OverdueForInvestment sums the overdue installments of inv at now. When year is non-nil only
// installments due in that year are considered, with the closed-year rule applied.
func OverdueForInvestment(inv domain.Investment, now time.Time, year *int) InvestmentOverdue {
	var out InvestmentOverdue
	for _, inst := range inv.Installments {
		var overdue bool
		if year != nil {
			var inScope bool
			overdue, inScope = IsOverdueInYear(inst, now, *year)
			if !inScope {
				continue
			}
		} else {
			overdue = IsOverdue(inst, now)
		}
		if !overdue {
			continue
		}
		out.Amount = out.Amount.Add(inst.TotalValue)
		out.Count++
		if !out.HasArrears || inst.PaymentDate.Before(out.EarliestDue) {
			out.EarliestDue = inst.PaymentDate
		}
		out.HasArrears = true
	}
	return out
}

// OverdueByProject rolls overdue money up to projects. Projects without arrears are left out,
// the rest are sorted by amount descending keeping discovery order on ties.
func OverdueByProject(projects []domain.Project, now time.Time, year *int) []ProjectOverdue {
	type row struct {
		id     uuid.UUID
		name   string
		amount decimal.Decimal
	}
	rows := make([]row, 0, len(projects))
	total := decimal.Zero
	for i := range projects {
		p := &projects[i]
		amount := decimal.Zero
		for _, inv := range p.Investments {
			if !inv.InArrearsScope() {
				continue
			}
			amount = amount.Add(OverdueForInvestment(inv, now, year).Amount)
		}
		if !amount.IsPositive() {
			continue
		}
		rows = append(rows, row{id: p.ID, name: p.DisplayName(), amount: amount})
		total = total.Add(amount)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].amount.GreaterThan(rows[j].amount)
	})

	out := make([]ProjectOverdue, len(rows))
	hundred := decimal.NewFromInt(100)
	for i, r := range rows {
		var pct int64
		if total.IsPositive() {
			pct = r.amount.Div(total).Mul(hundred).Round(0).IntPart()
		}
		out[i] = ProjectOverdue{
			ProjectID:  r.id,
			Name:       r.name,
			Amount:     r.amount.InexactFloat64(),
			Percentage: pct,
		}
	}
	return out
}
