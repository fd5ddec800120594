package arrears

import (
	"context"
	"sync"
	"testing"
	"time"

	"lokl-mora-backend/internal/domain"
	"lokl-mora-backend/internal/infrastructure/database/dbtest"
	"lokl-mora-backend/internal/pkg/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshAndSnapshot(t *testing.T) {
	db := dbtest.Open(t)
	p := dbtest.SeedPortfolio(t, db)
	s := &Service{Repo: dbtest.Repository(db), Clock: clock.Fixed(dbtest.Now)}
	ctx := context.Background()

	n, err := s.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ana@lokl.life", rows[0].Email)
	assert.Equal(t, p.Ana.ID, rows[0].InvestmentID)
	assert.Equal(t, "Casa Verde", rows[0].ProjectName)
	assert.Equal(t, "1000", rows[0].MoraAmount.String())
	assert.Equal(t, time.February, rows[0].MoraStartDate.Month())
	// Feb 10 to Jun 10 2024.
	assert.Equal(t, 121, rows[0].DaysInArrears)
	assert.Equal(t, "luis@lokl.life", rows[1].Email)
	assert.Equal(t, "300", rows[1].MoraAmount.String())
}

func TestRefresh_IsIdempotentAndTracksPayments(t *testing.T) {
	db := dbtest.Open(t)
	p := dbtest.SeedPortfolio(t, db)
	s := &Service{Repo: dbtest.Repository(db), Clock: clock.Fixed(dbtest.Now)}
	ctx := context.Background()

	_, err := s.Refresh(ctx)
	require.NoError(t, err)
	n, err := s.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var inst domain.Installment
	require.NoError(t, db.Where("investment_id = ? AND installment_number = ?", p.Luis.ID, 2).First(&inst).Error)
	dbtest.Seeder{T: t, DB: db}.Pay(inst, 300, 0, dbtest.Now)

	rows, err := s.RefreshAndRead(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ana@lokl.life", rows[0].Email)
}

func TestRefresh_Concurrent(t *testing.T) {
	db := dbtest.Open(t)
	dbtest.SeedPortfolio(t, db)
	s := &Service{Repo: dbtest.Repository(db), Clock: clock.Fixed(dbtest.Now)}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Refresh(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rows, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
