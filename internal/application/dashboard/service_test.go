package dashboard

import (
	"context"
	"testing"
	"time"

	"lokl-mora-backend/internal/infrastructure/database/dbtest"
	"lokl-mora-backend/internal/pkg/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStats(t *testing.T) {
	db := dbtest.Open(t)
	p := dbtest.SeedPortfolio(t, db)
	s := dbtest.Seeder{T: t, DB: db}
	// May payment so last month has income.
	extra := s.Installment(p.Sofia, 3, dbtest.Date(2024, time.August, 5), 200)
	s.Pay(extra, 200, 0, dbtest.Date(2024, time.May, 15))

	svc := &Service{Repo: dbtest.Repository(db), Clock: clock.Fixed(dbtest.Now)}
	st, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1380.0, st.TotalIncome)
	assert.Equal(t, 400.0, st.ThisMonthIncome)
	assert.Equal(t, 200.0, st.LastMonthIncome)
	assert.Equal(t, st.ThisMonthIncome, st.MonthlyCollection)
	assert.Equal(t, 100.0, st.MonthlyCollectionChange)
	assert.Equal(t, int64(3), st.TotalActiveSubscriptions)
	assert.Equal(t, int64(1), st.NewSubscriptions)

	// 3 overdue of 8 installments now; at the June 5 cutoff 3 of the 5 due before it were overdue.
	assert.InDelta(t, 37.5, st.OverdueRate, 0.001)
	assert.InDelta(t, -22.5, st.OverdueRateChange, 0.001)
}

func TestStats_EmptyDatabase(t *testing.T) {
	db := dbtest.Open(t)
	svc := &Service{Repo: dbtest.Repository(db), Clock: clock.Fixed(dbtest.Now)}
	st, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, st.TotalIncome)
	assert.Zero(t, st.OverdueRate)
	assert.Zero(t, st.OverdueRateChange)
	assert.Zero(t, st.MonthlyCollectionChange)
}

func TestLastMonthCutoff(t *testing.T) {
	c := clock.Fixed(dbtest.Now)
	assert.Equal(t, dbtest.Date(2024, time.June, 5), LastMonthCutoff(c, c.Now()))
}
