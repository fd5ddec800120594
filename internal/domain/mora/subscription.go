package mora

import (
	"time"

	"lokl-mora-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// SubscriptionStatus describes how far along a subscription's payment plan is.
type SubscriptionStatus string

const (
	SubscriptionActive     SubscriptionStatus = "active"
	SubscriptionEndingSoon SubscriptionStatus = "ending_soon"
	SubscriptionCompleted  SubscriptionStatus = "completed"
)

// endingSoonThreshold is the number of unpaid installments at or under which a plan ends soon.
const endingSoonThreshold = 3

// Progress summarizes the payment plan of one investment at a reference time.
type Progress struct {
	Status                SubscriptionStatus
	TotalInstallments     int
	PaidInstallments      int
	RemainingInstallments int
	Overdue               decimal.Decimal
	TotalPaid             decimal.Decimal
	TotalValue            decimal.Decimal
	EndDate               *time.Time
}

// ProgressOf computes the plan progress of inv. Installments are expected in plan order;
// the last one gives the end date.
func ProgressOf(inv domain.Investment, now time.Time) Progress {
	p := Progress{TotalInstallments: len(inv.Installments)}
	for _, inst := range inv.Installments {
		if inst.IsPaid() {
			p.PaidInstallments++
		}
		p.TotalPaid = p.TotalPaid.Add(inst.NetPaid())
		p.TotalValue = p.TotalValue.Add(inst.TotalValue)
	}
	p.Overdue = OverdueForInvestment(inv, now, nil).Amount
	p.RemainingInstallments = p.TotalInstallments - p.PaidInstallments
	switch {
	case p.RemainingInstallments <= 0:
		p.Status = SubscriptionCompleted
	case p.RemainingInstallments <= endingSoonThreshold:
		p.Status = SubscriptionEndingSoon
	default:
		p.Status = SubscriptionActive
	}
	if n := len(inv.Installments); n > 0 {
		end := inv.Installments[n-1].PaymentDate
		p.EndDate = &end
	}
	return p
}
