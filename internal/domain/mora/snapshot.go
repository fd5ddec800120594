package mora

import (
	"strings"
	"time"

	"lokl-mora-backend/internal/domain"
)

// BuildArrearsSnapshot returns one record per in-scope investment with an email and overdue
// money at now. MoraStartDate is the earliest due date among its overdue installments.
func BuildArrearsSnapshot(investments []domain.Investment, now time.Time) []domain.ArrearsRecord {
	var out []domain.ArrearsRecord
	for _, inv := range investments {
		if !inv.InArrearsScope() || strings.TrimSpace(inv.Email) == "" {
			continue
		}
		o := OverdueForInvestment(inv, now, nil)
		if !o.HasArrears || !o.Amount.IsPositive() {
			continue
		}
		out = append(out, domain.ArrearsRecord{
			Email:         strings.TrimSpace(inv.Email),
			MoraAmount:    o.Amount,
			MoraStartDate: o.EarliestDue,
			InvestmentID:  inv.ID,
			ProjectID:     inv.ProjectID,
		})
	}
	return out
}
