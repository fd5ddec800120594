package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ExecutionReport       = "report"
	ExecutionEmail        = "email"
	ExecutionTableRefresh = "table_refresh"

	ExecutionSuccess = "success"
	ExecutionError   = "error"
)

// AutomationExecution is an append-only audit entry for one automation run.
type AutomationExecution struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Type      string         `gorm:"column:type;type:varchar(30);not null;index" json:"type"`
	Status    string         `gorm:"column:status;type:varchar(20);not null" json:"status"`
	Message   string         `gorm:"column:message" json:"message"`
	Details   datatypes.JSON `gorm:"column:details" json:"details,omitempty"`
	Source    string         `gorm:"column:source;type:varchar(20)" json:"source"`
	CreatedAt time.Time      `gorm:"column:created_at;index" json:"timestamp"`
}

func (AutomationExecution) TableName() string {
	return "AutomationExecutions"
}

func (e *AutomationExecution) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
