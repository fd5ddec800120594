// Package dbtest builds in-memory databases seeded with subscriptions for handler and service tests.
package dbtest

import (
	"testing"
	"time"

	"lokl-mora-backend/internal/domain"
	"lokl-mora-backend/internal/infrastructure/database"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Open returns a migrated in-memory sqlite database.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every pooled connection to :memory: would get its own empty database.
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

// Date returns midnight UTC of the given day.
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Seeder inserts projects, subscriptions, installments and payments.
type Seeder struct {
	T  *testing.T
	DB *gorm.DB
}

func (s Seeder) Project(name string) domain.Project {
	s.T.Helper()
	p := domain.Project{Name: name}
	require.NoError(s.T, s.DB.Create(&p).Error)
	return p
}

// Subscription inserts an approved subscription created at createdAt.
func (s Seeder) Subscription(p domain.Project, email string, value int64, createdAt time.Time) domain.Investment {
	s.T.Helper()
	inv := domain.Investment{
		ProjectID:       p.ID,
		Type:            domain.InvestmentTypeSubscription,
		Status:          "approved",
		Email:           email,
		InvestmentValue: decimal.NewFromInt(value),
		UnitsQuantity:   1,
		CreatedAt:       createdAt,
	}
	require.NoError(s.T, s.DB.Create(&inv).Error)
	return inv
}

// Installment inserts installment number n due on due.
func (s Seeder) Installment(inv domain.Investment, n int, due time.Time, value int64) domain.Installment {
	s.T.Helper()
	inst := domain.Installment{
		InvestmentID:      inv.ID,
		InstallmentNumber: n,
		PaymentDate:       due,
		TotalValue:        decimal.NewFromInt(value),
	}
	require.NoError(s.T, s.DB.Create(&inst).Error)
	return inst
}

// Pay inserts an approved transaction for inst created at at.
func (s Seeder) Pay(inst domain.Installment, value, fee int64, at time.Time) {
	s.T.Helper()
	require.NoError(s.T, s.DB.Create(&domain.Transaction{
		InstallmentID:    inst.ID,
		Status:           domain.TransactionApproved,
		Value:            decimal.NewFromInt(value),
		PaymentMethodFee: decimal.NewFromInt(fee),
		CreatedAt:        at,
	}).Error)
}

// Portfolio is the standard data set: at 2024-06-10 ana is in arrears on Casa Verde
// (installments due Feb 10 and Mar 10, 500 each) and paid Jan 10 on time; luis on Torre Sol
// paid Jan late and owes 300 for Apr 10; sofia is current.
type Portfolio struct {
	CasaVerde domain.Project
	TorreSol  domain.Project
	Ana       domain.Investment
	Luis      domain.Investment
	Sofia     domain.Investment
}

// Now is the reference time the Portfolio is described at.
var Now = time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)

func SeedPortfolio(t *testing.T, db *gorm.DB) Portfolio {
	t.Helper()
	s := Seeder{T: t, DB: db}
	p := Portfolio{CasaVerde: s.Project("Casa Verde"), TorreSol: s.Project("Torre Sol")}

	p.Ana = s.Subscription(p.CasaVerde, "ana@lokl.life", 3000, Date(2023, time.December, 20))
	i1 := s.Installment(p.Ana, 1, Date(2024, time.January, 10), 500)
	s.Pay(i1, 500, 20, Date(2024, time.January, 12))
	s.Installment(p.Ana, 2, Date(2024, time.February, 10), 500)
	s.Installment(p.Ana, 3, Date(2024, time.March, 10), 500)

	p.Luis = s.Subscription(p.TorreSol, "luis@lokl.life", 1200, Date(2024, time.January, 2))
	l1 := s.Installment(p.Luis, 1, Date(2024, time.January, 10), 300)
	s.Pay(l1, 300, 0, Date(2024, time.February, 20))
	s.Installment(p.Luis, 2, Date(2024, time.April, 10), 300)

	p.Sofia = s.Subscription(p.TorreSol, "sofia@lokl.life", 800, Date(2024, time.June, 1))
	f1 := s.Installment(p.Sofia, 1, Date(2024, time.June, 5), 400)
	s.Pay(f1, 400, 0, Date(2024, time.June, 5))
	s.Installment(p.Sofia, 2, Date(2024, time.July, 5), 400)

	declined := s.Subscription(p.CasaVerde, "declined@lokl.life", 9000, Date(2024, time.June, 2))
	require.NoError(t, db.Model(&declined).Update("status", domain.InvestmentStatusDeclined).Error)
	s.Installment(declined, 1, Date(2024, time.January, 10), 9000)
	return p
}

// Repository returns a repository over db.
func Repository(db *gorm.DB) *database.Repository {
	return &database.Repository{DB: db}
}
