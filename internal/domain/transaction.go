package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionApproved is the only status that counts as a payment.
const TransactionApproved = "APPROVED"

// Transaction is a payment attempt against an installment.
type Transaction struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	InstallmentID    uuid.UUID       `gorm:"column:installment_id;type:uuid;not null;index" json:"installment_id"`
	Status           string          `gorm:"column:status;type:varchar(20);not null;index" json:"status"`
	Value            decimal.Decimal `gorm:"column:value;type:decimal(18,2);not null" json:"value"`
	PaymentMethodFee decimal.Decimal `gorm:"column:payment_method_fee;type:decimal(18,2);not null;default:0" json:"payment_method_fee"`
	CreatedAt        time.Time       `gorm:"column:created_at;index" json:"createdAt"`
	UpdatedAt        time.Time       `gorm:"column:updated_at" json:"updatedAt"`
}

func (Transaction) TableName() string {
	return "Transactions"
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (t Transaction) IsApproved() bool {
	return t.Status == TransactionApproved
}

// Net is the amount received after the payment method fee.
func (t Transaction) Net() decimal.Decimal {
	return t.Value.Sub(t.PaymentMethodFee)
}
