package mora

import (
	"math"
	"sort"
	"time"

	"lokl-mora-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// Window bounds installment due dates, both ends inclusive. A zero bound is open.
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Contains reports whether t falls inside w.
func (w Window) Contains(t time.Time) bool {
	if !w.From.IsZero() && t.Before(w.From) {
		return false
	}
	if !w.To.IsZero() && t.After(w.To) {
		return false
	}
	return true
}

// ClientBehavior is the payment history of one client (one email) inside a window.
// TotalInstallments counts installments already settled one way or another: paid on time,
// paid late or unpaid past grace. Installments still inside their grace period are Pending.
type ClientBehavior struct {
	Email             string     `json:"email"`
	Investments       int        `json:"investments"`
	TotalInstallments int        `json:"totalInstallments"`
	PaidOnTime        int        `json:"paidOnTime"`
	PaidLate          int        `json:"paidLate"`
	NotPaid           int        `json:"notPaid"`
	Pending           int        `json:"pending"`
	TotalInvestment   float64    `json:"totalInvestment"`
	TotalPaid         float64    `json:"totalPaid"`
	TotalOverdue      float64    `json:"totalOverdue"`
	TotalDelayDays    int        `json:"totalDelayDays"`
	AverageDelayDays  float64    `json:"averageDelayDays"`
	OnTimePercentage  float64    `json:"onTimePercentage"`
	LatePercentage    float64    `json:"latePercentage"`
	UnpaidPercentage  float64    `json:"unpaidPercentage"`
	Segment           SegmentKey `json:"segment,omitempty"`
}

type clientAcc struct {
	ClientBehavior
	investment decimal.Decimal
	paid       decimal.Decimal
	overdue    decimal.Decimal
}

// AnalyzeClients groups in-scope investments by client email and classifies every installment
// due inside w as paid on time, paid late, unpaid or pending at now. An approved payment
// posted on or before the grace date is on time; the earliest approved transaction decides.
func AnalyzeClients(investments []domain.Investment, w Window, now time.Time) []ClientBehavior {
	byEmail := map[string]*clientAcc{}
	for _, inv := range investments {
		if !inv.InArrearsScope() {
			continue
		}
		key := inv.ClientKey()
		if key == "" {
			continue
		}

		var inWindow []domain.Installment
		for _, inst := range inv.Installments {
			if w.Contains(inst.PaymentDate) {
				inWindow = append(inWindow, inst)
			}
		}
		if len(inWindow) == 0 {
			continue
		}

		acc, ok := byEmail[key]
		if !ok {
			acc = &clientAcc{ClientBehavior: ClientBehavior{Email: key}}
			byEmail[key] = acc
		}
		acc.Investments++
		acc.investment = acc.investment.Add(inv.InvestmentValue)

		for _, inst := range inWindow {
			acc.classify(inst, now)
		}
	}

	out := make([]ClientBehavior, 0, len(byEmail))
	for _, acc := range byEmail {
		out = append(out, acc.finish())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out
}

func (a *clientAcc) classify(inst domain.Installment, now time.Time) {
	grace := GraceDate(inst.PaymentDate)
	a.paid = a.paid.Add(inst.NetPaid())

	paidAt, paid := inst.FirstApprovedPayment()
	switch {
	case !paid && now.After(grace):
		a.NotPaid++
		a.overdue = a.overdue.Add(inst.TotalValue)
	case !paid:
		a.Pending++
		return
	case !paidAt.After(grace):
		a.PaidOnTime++
	default:
		a.PaidLate++
		a.TotalDelayDays += int(paidAt.Sub(grace) / (24 * time.Hour))
	}
	a.TotalInstallments++
}

func (a *clientAcc) finish() ClientBehavior {
	c := a.ClientBehavior
	c.TotalInvestment = a.investment.InexactFloat64()
	c.TotalPaid = a.paid.InexactFloat64()
	c.TotalOverdue = a.overdue.InexactFloat64()
	if c.PaidLate > 0 {
		c.AverageDelayDays = round1(float64(c.TotalDelayDays) / float64(c.PaidLate))
	}
	if c.TotalInstallments > 0 {
		total := float64(c.TotalInstallments)
		c.OnTimePercentage = round1(float64(c.PaidOnTime) / total * 100)
		c.LatePercentage = round1(float64(c.PaidLate) / total * 100)
		c.UnpaidPercentage = round1(float64(c.NotPaid) / total * 100)
	}
	return c
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
