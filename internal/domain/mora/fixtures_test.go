package mora

import (
	"time"

	"lokl-mora-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func unpaid(due time.Time, value int64) domain.Installment {
	return domain.Installment{ID: uuid.New(), PaymentDate: due, TotalValue: decimal.NewFromInt(value)}
}

func paidAt(due time.Time, value int64, at time.Time) domain.Installment {
	inst := unpaid(due, value)
	inst.Transactions = []domain.Transaction{{
		ID:        uuid.New(),
		Status:    domain.TransactionApproved,
		Value:     decimal.NewFromInt(value),
		CreatedAt: at,
	}}
	return inst
}

func subscription(email string, value int64, installments ...domain.Installment) domain.Investment {
	return domain.Investment{
		ID:              uuid.New(),
		ProjectID:       uuid.New(),
		Type:            domain.InvestmentTypeSubscription,
		Status:          "approved",
		Email:           email,
		InvestmentValue: decimal.NewFromInt(value),
		Installments:    installments,
	}
}
