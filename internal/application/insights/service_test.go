package insights

import (
	"context"
	"testing"
	"time"

	"lokl-mora-backend/internal/domain/mora"
	"lokl-mora-backend/internal/infrastructure/database/dbtest"
	"lokl-mora-backend/internal/pkg/apperrors"
	"lokl-mora-backend/internal/pkg/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) *Service {
	db := dbtest.Open(t)
	dbtest.SeedPortfolio(t, db)
	return &Service{Repo: dbtest.Repository(db), Clock: clock.Fixed(dbtest.Now)}
}

func TestCustomerSegmentation(t *testing.T) {
	s := setup(t)
	out, err := s.CustomerSegmentation(context.Background(), dbtest.Date(2024, time.January, 1), dbtest.Date(2024, time.December, 31))
	require.NoError(t, err)
	assert.Equal(t, 3, out.TotalClients)
	require.Len(t, out.Segments, 4)

	byKey := map[mora.SegmentKey]mora.SegmentSummary{}
	total := 0
	for _, seg := range out.Segments {
		byKey[seg.Key] = seg
		total += seg.Count
	}
	assert.Equal(t, 3, total)
	// ana: 1 on time of 3 settled; luis: 1 late and 1 unpaid; sofia: 1 on time.
	assert.Equal(t, 2, byKey[mora.SegmentChronic].Count)
	assert.Equal(t, 1, byKey[mora.SegmentReliable].Count)
	assert.Equal(t, 15.0, byKey[mora.SegmentChronic].AveragePaymentDelay)
	assert.Equal(t, 23, out.Period.EndDate.Hour())
}

func TestCustomerSegmentation_Window(t *testing.T) {
	s := setup(t)
	out, err := s.CustomerSegmentation(context.Background(), dbtest.Date(2024, time.June, 1), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 1, out.TotalClients)
	assert.Equal(t, dbtest.Now, out.Period.EndDate)

	_, err = s.CustomerSegmentation(context.Background(), dbtest.Date(2024, time.June, 1), dbtest.Date(2024, time.May, 1))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestPaymentPatterns(t *testing.T) {
	s := setup(t)
	out, err := s.PaymentPatterns(context.Background())
	require.NoError(t, err)

	b := out.PaymentBehavior
	assert.Equal(t, 6, b.TotalInstallments)
	assert.Equal(t, 33.3, b.OnTimePayments)
	assert.Equal(t, 16.7, b.LatePayments)
	assert.Equal(t, 50.0, b.UnpaidPayments)
	assert.Equal(t, 15.0, b.AverageDelayDays)
	assert.Equal(t, 66.7, b.ChronicClients)

	require.Len(t, out.ProjectAnalysis, 2)
	assert.Equal(t, "Casa Verde", out.ProjectAnalysis[0].Name)
	assert.Equal(t, 2024, out.TimeAnalysis.Year)
	assert.Equal(t, "Feb", out.TimeAnalysis.WorstMonth)

	titles := []string{}
	for _, in := range out.Insights {
		titles = append(titles, in.Title)
	}
	assert.Equal(t, []string{"Concentración de morosos crónicos", "Cuotas vencidas sin pago", "Mora concentrada en un proyecto"}, titles)
}

func TestGenerateInsights_LatePaymentRule(t *testing.T) {
	out := GenerateInsights(PaymentBehavior{TotalInstallments: 10, LatePayments: 30.1}, nil)
	require.Len(t, out, 1)
	assert.Equal(t, "Alta tasa de pagos tardíos", out[0].Title)
	assert.Equal(t, SeverityHigh, out[0].Severity)

	out = GenerateInsights(PaymentBehavior{TotalInstallments: 10, LatePayments: 30}, nil)
	require.Len(t, out, 1)
	assert.Equal(t, SeverityLow, out[0].Severity)

	assert.Empty(t, GenerateInsights(PaymentBehavior{}, nil))
}
