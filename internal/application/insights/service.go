package insights

import (
	"context"
	"fmt"
	"math"
	"time"

	"lokl-mora-backend/internal/application/analytics"
	"lokl-mora-backend/internal/domain/mora"
	"lokl-mora-backend/internal/infrastructure/database"
	"lokl-mora-backend/internal/pkg/apperrors"
	"lokl-mora-backend/internal/pkg/clock"
)

const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"

	lateThreshold          = 30.0
	unpaidThreshold        = 10.0
	chronicShareThreshold  = 20.0
	projectShareThreshold  = 50
	defaultSegmentationDay = 365
)

type Service struct {
	Repo  *database.Repository
	Clock clock.Clock
}

// Period echoes the window a segmentation was computed over.
type Period struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// Segmentation is the customer segmentation response.
type Segmentation struct {
	Segments     []mora.SegmentSummary `json:"segments"`
	TotalClients int                   `json:"totalClients"`
	Period       Period                `json:"period"`
}

// CustomerSegmentation tiers every client by payment behavior on installments due between from
// and to. A zero to means now; a zero from means one year before to.
func (s *Service) CustomerSegmentation(ctx context.Context, from, to time.Time) (*Segmentation, error) {
	now := s.Clock.Now()
	if to.IsZero() {
		to = now
	} else {
		to = endOfDay(to)
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -defaultSegmentationDay)
	}
	if from.After(to) {
		return nil, fmt.Errorf("%w: startDate is after endDate", apperrors.ErrValidation)
	}

	invs, err := s.Repo.Subscriptions(ctx, database.DueWindow{From: from, To: to.Add(time.Nanosecond)})
	if err != nil {
		return nil, err
	}
	clients := mora.AnalyzeClients(invs, mora.Window{From: from, To: to}, now)
	return &Segmentation{
		Segments:     mora.SegmentClients(clients),
		TotalClients: len(clients),
		Period:       Period{StartDate: from, EndDate: to},
	}, nil
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// PaymentBehavior aggregates every settled installment of every client.
type PaymentBehavior struct {
	TotalInstallments int     `json:"totalInstallments"`
	OnTimePayments    float64 `json:"onTimePayments"`
	LatePayments      float64 `json:"latePayments"`
	UnpaidPayments    float64 `json:"unpaidPayments"`
	AverageDelayDays  float64 `json:"averageDelayDays"`
	ChronicClients    float64 `json:"chronicClients"`
}

// TimeAnalysis is the overdue series of the current year.
type TimeAnalysis struct {
	Year       int                   `json:"year"`
	Monthly    []mora.MonthlyOverdue `json:"monthly"`
	WorstMonth string                `json:"worstMonth,omitempty"`
}

// Insight is one recommendation derived from the patterns.
type Insight struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

// Patterns is the payment patterns response.
type Patterns struct {
	PaymentBehavior PaymentBehavior       `json:"paymentBehavior"`
	ProjectAnalysis []mora.ProjectOverdue `json:"projectAnalysis"`
	TimeAnalysis    TimeAnalysis          `json:"timeAnalysis"`
	Insights        []Insight             `json:"insights"`
}

// PaymentPatterns analyses payment behavior, project concentration and the monthly trend.
func (s *Service) PaymentPatterns(ctx context.Context) (*Patterns, error) {
	now := s.Clock.Now()
	invs, err := s.Repo.Subscriptions(ctx, database.DueWindow{})
	if err != nil {
		return nil, err
	}
	clients := mora.AnalyzeClients(invs, mora.Window{}, now)
	behavior := summarizeBehavior(clients)
	projects := mora.OverdueByProject(analytics.GroupByProject(invs), now, nil)
	trend := TimeAnalysis{Year: now.Year(), Monthly: mora.MonthlyOverdueSeries(invs, now, now.Year())}
	worst := 0.0
	for _, m := range trend.Monthly {
		if m.Monthly > worst {
			worst = m.Monthly
			trend.WorstMonth = m.Name
		}
	}
	return &Patterns{
		PaymentBehavior: behavior,
		ProjectAnalysis: projects,
		TimeAnalysis:    trend,
		Insights:        GenerateInsights(behavior, projects),
	}, nil
}

func summarizeBehavior(clients []mora.ClientBehavior) PaymentBehavior {
	var out PaymentBehavior
	var onTime, late, unpaid, delay, chronic int
	for _, c := range clients {
		out.TotalInstallments += c.TotalInstallments
		onTime += c.PaidOnTime
		late += c.PaidLate
		unpaid += c.NotPaid
		delay += c.TotalDelayDays
		if mora.Classify(c) == mora.SegmentChronic {
			chronic++
		}
	}
	if out.TotalInstallments > 0 {
		total := float64(out.TotalInstallments)
		out.OnTimePayments = round1(float64(onTime) / total * 100)
		out.LatePayments = round1(float64(late) / total * 100)
		out.UnpaidPayments = round1(float64(unpaid) / total * 100)
	}
	if late > 0 {
		out.AverageDelayDays = round1(float64(delay) / float64(late))
	}
	if len(clients) > 0 {
		out.ChronicClients = round1(float64(chronic) / float64(len(clients)) * 100)
	}
	return out
}

// GenerateInsights applies the recommendation rules in severity order.
func GenerateInsights(b PaymentBehavior, projects []mora.ProjectOverdue) []Insight {
	out := []Insight{}
	if b.LatePayments > lateThreshold {
		out = append(out, Insight{
			Title:       "Alta tasa de pagos tardíos",
			Description: "Más del 30% de los pagos se realizan con retraso. Considere implementar recordatorios tempranos.",
			Severity:    SeverityHigh,
		})
	}
	if b.ChronicClients > chronicShareThreshold {
		out = append(out, Insight{
			Title:       "Concentración de morosos crónicos",
			Description: fmt.Sprintf("El %.1f%% de los clientes son morosos crónicos. Priorice la gestión de cobro directa.", b.ChronicClients),
			Severity:    SeverityHigh,
		})
	}
	if b.UnpaidPayments > unpaidThreshold {
		out = append(out, Insight{
			Title:       "Cuotas vencidas sin pago",
			Description: fmt.Sprintf("El %.1f%% de las cuotas vencidas no se han pagado. Revise la frecuencia de recordatorios.", b.UnpaidPayments),
			Severity:    SeverityMedium,
		})
	}
	if len(projects) > 1 && projects[0].Percentage >= projectShareThreshold {
		out = append(out, Insight{
			Title:       "Mora concentrada en un proyecto",
			Description: fmt.Sprintf("El proyecto %s acumula el %d%% de la mora total.", projects[0].Name, projects[0].Percentage),
			Severity:    SeverityMedium,
		})
	}
	if len(out) == 0 && b.TotalInstallments > 0 {
		out = append(out, Insight{
			Title:       "Comportamiento de pago saludable",
			Description: "Los indicadores de mora están dentro de los umbrales esperados.",
			Severity:    SeverityLow,
		})
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
