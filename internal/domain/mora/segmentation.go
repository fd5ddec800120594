package mora

import (
	"github.com/shopspring/decimal"
)

// SegmentKey names one of the four payment-behavior tiers, best first.
type SegmentKey string

const (
	SegmentReliable   SegmentKey = "reliable"
	SegmentOccasional SegmentKey = "occasional"
	SegmentFrequent   SegmentKey = "frequent"
	SegmentChronic    SegmentKey = "chronic"
)

// thinHistory is the installment count under which a client is tiered by flags, not ratios.
const thinHistory = 2

type segmentInfo struct {
	key         SegmentKey
	name        string
	description string
	color       string
}

var segmentOrder = []segmentInfo{
	{SegmentReliable, "Pagadores puntuales", "Pagan el 90% o más de sus cuotas antes de la fecha límite", "#22C55E"},
	{SegmentOccasional, "Retrasos ocasionales", "Entre el 70% y el 90% de sus cuotas a tiempo", "#EAB308"},
	{SegmentFrequent, "Retrasos frecuentes", "Entre el 40% y el 70% de sus cuotas a tiempo", "#F97316"},
	{SegmentChronic, "Morosos crónicos", "Menos del 40% de sus cuotas a tiempo o cuotas sin pagar", "#EF4444"},
}

// SegmentSummary aggregates the clients of one tier.
type SegmentSummary struct {
	Key                  SegmentKey       `json:"key"`
	Name                 string           `json:"name"`
	Description          string           `json:"description"`
	Color                string           `json:"color"`
	Count                int              `json:"count"`
	TotalInvestment      float64          `json:"totalInvestment"`
	TotalOverdue         float64          `json:"totalOverdue"`
	AveragePaymentDelay  float64          `json:"averagePaymentDelay"`
	InvestmentPercentage float64          `json:"investmentPercentage"`
	OverduePercentage    float64          `json:"overduePercentage"`
	Clients              []ClientBehavior `json:"clients"`
}

// Classify assigns c to a tier. Clients with fewer than two settled installments never land in
// the frequent tier: any unpaid installment makes them chronic, any late one occasional.
func Classify(c ClientBehavior) SegmentKey {
	if c.TotalInstallments < thinHistory {
		switch {
		case c.NotPaid > 0:
			return SegmentChronic
		case c.PaidLate > 0:
			return SegmentOccasional
		default:
			return SegmentReliable
		}
	}
	switch p := c.OnTimePercentage; {
	case p >= 90:
		return SegmentReliable
	case p >= 70:
		return SegmentOccasional
	case p >= 40:
		return SegmentFrequent
	default:
		return SegmentChronic
	}
}

// SegmentClients returns the four tiers in fixed order, each present even when empty.
// Percentages are relative to all clients, with denominators floored at 1.
func SegmentClients(clients []ClientBehavior) []SegmentSummary {
	type acc struct {
		investment decimal.Decimal
		overdue    decimal.Decimal
		delayDays  int
		late       int
	}
	idx := make(map[SegmentKey]int, len(segmentOrder))
	out := make([]SegmentSummary, len(segmentOrder))
	accs := make([]acc, len(segmentOrder))
	for i, s := range segmentOrder {
		idx[s.key] = i
		out[i] = SegmentSummary{
			Key:         s.key,
			Name:        s.name,
			Description: s.description,
			Color:       s.color,
			Clients:     []ClientBehavior{},
		}
	}

	allInvestment, allOverdue := decimal.Zero, decimal.Zero
	for _, c := range clients {
		c.Segment = Classify(c)
		i := idx[c.Segment]
		inv := decimal.NewFromFloat(c.TotalInvestment)
		ovd := decimal.NewFromFloat(c.TotalOverdue)

		out[i].Count++
		out[i].Clients = append(out[i].Clients, c)
		accs[i].investment = accs[i].investment.Add(inv)
		accs[i].overdue = accs[i].overdue.Add(ovd)
		accs[i].delayDays += c.TotalDelayDays
		accs[i].late += c.PaidLate

		allInvestment = allInvestment.Add(inv)
		allOverdue = allOverdue.Add(ovd)
	}

	one := decimal.NewFromInt(1)
	investmentBase := decimal.Max(allInvestment, one)
	overdueBase := decimal.Max(allOverdue, one)
	hundred := decimal.NewFromInt(100)
	for i := range out {
		a := accs[i]
		out[i].TotalInvestment = a.investment.InexactFloat64()
		out[i].TotalOverdue = a.overdue.InexactFloat64()
		if a.late > 0 {
			out[i].AveragePaymentDelay = round1(float64(a.delayDays) / float64(a.late))
		}
		out[i].InvestmentPercentage = a.investment.Div(investmentBase).Mul(hundred).Round(1).InexactFloat64()
		out[i].OverduePercentage = a.overdue.Div(overdueBase).Mul(hundred).Round(1).InexactFloat64()
	}
	return out
}
