package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	InvestmentTypeSubscription = "subscription"
	InvestmentStatusDeclined   = "declined"
)

// Investment is one client's purchase in a project. The client is identified by Email only.
type Investment struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ProjectID       uuid.UUID       `gorm:"column:project_id;type:uuid;not null;index" json:"project_id"`
	Project         *Project        `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Type            string          `gorm:"column:type;type:varchar(30);not null;index" json:"type"`
	Status          string          `gorm:"column:status;type:varchar(30);not null" json:"status"`
	Email           string          `gorm:"column:email;index" json:"email"`
	InvestmentValue decimal.Decimal `gorm:"column:investment_value;type:decimal(18,2);not null;default:0" json:"investment_value"`
	UnitsQuantity   int             `gorm:"column:units_quantity;not null;default:0" json:"units_quantity"`
	Installments    []Installment   `gorm:"foreignKey:InvestmentID" json:"installments,omitempty"`
	CreatedAt       time.Time       `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt       time.Time       `gorm:"column:updated_at" json:"updatedAt"`
}

func (Investment) TableName() string {
	return "Investments"
}

func (i *Investment) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// InArrearsScope reports whether the investment participates in arrears logic:
// subscription type and not declined.
func (i Investment) InArrearsScope() bool {
	return i.Type == InvestmentTypeSubscription && i.Status != InvestmentStatusDeclined
}

// ClientKey normalizes the email used as client identity.
func (i Investment) ClientKey() string {
	return strings.ToLower(strings.TrimSpace(i.Email))
}
