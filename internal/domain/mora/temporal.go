package mora

import (
	"time"

	"lokl-mora-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// MonthNames are the labels of the twelve monthly buckets, January first.
var MonthNames = [12]string{"Ene", "Feb", "Mar", "Abr", "May", "Jun", "Jul", "Ago", "Sep", "Oct", "Nov", "Dic"}

// MonthlyFinancials compares money due in a month with money actually received for it.
type MonthlyFinancials struct {
	Name       string  `json:"name"`
	Expected   float64 `json:"expected"`
	Actual     float64 `json:"actual"`
	Difference float64 `json:"difference"`
}

// MonthlyOverdue carries the overdue amount of a month and the running total up to it.
type MonthlyOverdue struct {
	Name        string  `json:"name"`
	Monthly     float64 `json:"monthly"`
	Accumulated float64 `json:"accumulated"`
}

// YearInstallments flattens the installments of in-scope investments due in year.
func YearInstallments(investments []domain.Investment, year int) []domain.Installment {
	var out []domain.Installment
	for _, inv := range investments {
		if !inv.InArrearsScope() {
			continue
		}
		for _, inst := range inv.Installments {
			if inst.PaymentDate.Year() == year {
				out = append(out, inst)
			}
		}
	}
	return out
}

// ExpectedVsActual buckets year's installments by due month. Actual counts net approved
// payments for the installment no matter when they were posted.
func ExpectedVsActual(investments []domain.Investment, year int) []MonthlyFinancials {
	var expected, actual [12]decimal.Decimal
	for _, inst := range YearInstallments(investments, year) {
		m := inst.PaymentDate.Month() - 1
		expected[m] = expected[m].Add(inst.TotalValue)
		actual[m] = actual[m].Add(inst.NetPaid())
	}

	out := make([]MonthlyFinancials, 12)
	for i := range MonthNames {
		out[i] = MonthlyFinancials{
			Name:       MonthNames[i],
			Expected:   expected[i].InexactFloat64(),
			Actual:     actual[i].InexactFloat64(),
			Difference: actual[i].Sub(expected[i]).InexactFloat64(),
		}
	}
	return out
}

// MonthlyOverdueSeries sums overdue money per due month of year and keeps a running total
// in calendar order.
func MonthlyOverdueSeries(investments []domain.Investment, now time.Time, year int) []MonthlyOverdue {
	var monthly [12]decimal.Decimal
	for _, inst := range YearInstallments(investments, year) {
		overdue, inScope := IsOverdueInYear(inst, now, year)
		if !inScope || !overdue {
			continue
		}
		m := inst.PaymentDate.Month() - 1
		monthly[m] = monthly[m].Add(inst.TotalValue)
	}

	out := make([]MonthlyOverdue, 12)
	accumulated := decimal.Zero
	for i := range MonthNames {
		accumulated = accumulated.Add(monthly[i])
		out[i] = MonthlyOverdue{
			Name:        MonthNames[i],
			Monthly:     monthly[i].InexactFloat64(),
			Accumulated: accumulated.InexactFloat64(),
		}
	}
	return out
}

// OverdueRate is the percentage of in-scope installments overdue at ref. Only installments due
// before dueBefore are counted when it is non-zero, and only transactions created before it
// count as payments; this reproduces the arrears rate as it stood at an earlier cutoff.
func OverdueRate(investments []domain.Investment, ref, dueBefore time.Time) float64 {
	total, overdue := 0, 0
	for _, inv := range investments {
		if !inv.InArrearsScope() {
			continue
		}
		for _, inst := range inv.Installments {
			if !dueBefore.IsZero() {
				if !inst.PaymentDate.Before(dueBefore) {
					continue
				}
				inst = paidBefore(inst, dueBefore)
			}
			total++
			if IsOverdue(inst, ref) {
				overdue++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(overdue) / float64(total) * 100
}

func paidBefore(inst domain.Installment, cutoff time.Time) domain.Installment {
	kept := make([]domain.Transaction, 0, len(inst.Transactions))
	for _, t := range inst.Transactions {
		if t.CreatedAt.Before(cutoff) {
			kept = append(kept, t)
		}
	}
	inst.Transactions = kept
	return inst
}
