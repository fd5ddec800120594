package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ArrearsRecord is one row of the users-in-arrears table. The table is a cache rebuilt
// from installments and transactions on every refresh; it is never patched in place.
type ArrearsRecord struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Email         string          `gorm:"column:email;not null;index" json:"email"`
	MoraAmount    decimal.Decimal `gorm:"column:mora_amount;type:decimal(18,2);not null" json:"mora_amount"`
	MoraStartDate time.Time       `gorm:"column:mora_start_date;not null" json:"mora_start_date"`
	InvestmentID  uuid.UUID       `gorm:"column:investment_id;type:uuid;not null" json:"investment_id"`
	ProjectID     uuid.UUID       `gorm:"column:project_id;type:uuid;not null" json:"project_id"`
	CreatedAt     time.Time       `gorm:"column:created_at" json:"createdAt"`
}

func (ArrearsRecord) TableName() string {
	return "UsersInMora"
}

func (r *ArrearsRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
