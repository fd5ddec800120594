package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Installment is one scheduled payment of an investment.
type Installment struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	InvestmentID      uuid.UUID       `gorm:"column:investment_id;type:uuid;not null;uniqueIndex:idx_installment_number" json:"investment_id"`
	InstallmentNumber int             `gorm:"column:installment_number;not null;uniqueIndex:idx_installment_number" json:"installment_number"`
	PaymentDate       time.Time       `gorm:"column:payment_date;not null;index" json:"payment_date"`
	TotalValue        decimal.Decimal `gorm:"column:total_value;type:decimal(18,2);not null" json:"total_value"`
	Transactions      []Transaction   `gorm:"foreignKey:InstallmentID" json:"transactions,omitempty"`
	CreatedAt         time.Time       `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt         time.Time       `gorm:"column:updated_at" json:"updatedAt"`
}

func (Installment) TableName() string {
	return "Installments"
}

func (i *Installment) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// IsPaid reports whether at least one approved transaction exists.
func (i Installment) IsPaid() bool {
	for _, t := range i.Transactions {
		if t.IsApproved() {
			return true
		}
	}
	return false
}

// NetPaid sums value minus fee over approved transactions.
func (i Installment) NetPaid() decimal.Decimal {
	total := decimal.Zero
	for _, t := range i.Transactions {
		if t.IsApproved() {
			total = total.Add(t.Net())
		}
	}
	return total
}

// FirstApprovedPayment returns the earliest approved transaction timestamp.
func (i Installment) FirstApprovedPayment() (time.Time, bool) {
	var first time.Time
	found := false
	for _, t := range i.Transactions {
		if !t.IsApproved() {
			continue
		}
		if !found || t.CreatedAt.Before(first) {
			first = t.CreatedAt
			found = true
		}
	}
	return first, found
}
