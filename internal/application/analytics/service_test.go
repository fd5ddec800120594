package analytics

import (
	"context"
	"testing"

	"lokl-mora-backend/internal/domain"
	"lokl-mora-backend/internal/infrastructure/database/dbtest"
	"lokl-mora-backend/internal/pkg/clock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*Service, dbtest.Portfolio) {
	db := dbtest.Open(t)
	p := dbtest.SeedPortfolio(t, db)
	return &Service{Repo: dbtest.Repository(db), Clock: clock.Fixed(dbtest.Now)}, p
}

func TestExpectedVsActual(t *testing.T) {
	s, _ := setup(t)
	out, err := s.ExpectedVsActual(context.Background(), 2024)
	require.NoError(t, err)
	require.Len(t, out, 12)

	assert.Equal(t, "Ene", out[0].Name)
	assert.Equal(t, 800.0, out[0].Expected)
	assert.Equal(t, 780.0, out[0].Actual)
	assert.Equal(t, -20.0, out[0].Difference)
	assert.Equal(t, 500.0, out[1].Expected)
	assert.Zero(t, out[1].Actual)
	assert.Equal(t, 400.0, out[5].Expected)
	assert.Equal(t, 400.0, out[5].Actual)
	assert.Zero(t, out[11].Expected)
}

func TestMonthlyOverdue(t *testing.T) {
	s, _ := setup(t)
	out, err := s.MonthlyOverdue(context.Background(), 2024)
	require.NoError(t, err)
	require.Len(t, out, 12)
	assert.Equal(t, 0.0, out[0].Monthly)
	assert.Equal(t, 500.0, out[1].Monthly)
	assert.Equal(t, 500.0, out[2].Monthly)
	assert.Equal(t, 300.0, out[3].Monthly)
	assert.Equal(t, 1300.0, out[3].Accumulated)
	assert.Equal(t, 1300.0, out[11].Accumulated)
}

func TestOverdueByProject(t *testing.T) {
	s, p := setup(t)
	out, err := s.OverdueByProject(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, p.CasaVerde.ID, out[0].ProjectID)
	assert.Equal(t, "Casa Verde", out[0].Name)
	assert.Equal(t, 1000.0, out[0].Amount)
	assert.Equal(t, int64(77), out[0].Percentage)
	assert.Equal(t, int64(23), out[1].Percentage)

	year := 2023
	out, err = s.OverdueByProject(context.Background(), &year)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestOverdueByProject_SkipsDeletedProject(t *testing.T) {
	db := dbtest.Open(t)
	p := dbtest.SeedPortfolio(t, db)
	require.NoError(t, db.Delete(&p.CasaVerde).Error)
	s := &Service{Repo: dbtest.Repository(db), Clock: clock.Fixed(dbtest.Now)}

	out, err := s.OverdueByProject(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, p.TorreSol.ID, out[0].ProjectID)
	assert.Equal(t, "Torre Sol", out[0].Name)
	assert.Equal(t, 300.0, out[0].Amount)
	assert.Equal(t, int64(100), out[0].Percentage)
}

func TestGroupByProject_MissingProject(t *testing.T) {
	pid := uuid.New()
	groups := GroupByProject([]domain.Investment{{ProjectID: pid}, {ProjectID: pid}})
	require.Len(t, groups, 1)
	assert.Equal(t, domain.UnnamedProject, groups[0].DisplayName())
	assert.Len(t, groups[0].Investments, 2)
}
