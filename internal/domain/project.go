package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UnnamedProject is reported when a project row is missing or has no name.
const UnnamedProject = "Sin nombre"

// Project owns the investments sold for one real-estate project.
type Project struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name        string         `gorm:"column:name;not null" json:"name"`
	Investments []Investment   `gorm:"foreignKey:ProjectID" json:"investments,omitempty"`
	CreatedAt   time.Time      `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"column:updated_at" json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (Project) TableName() string {
	return "Projects"
}

// BeforeCreate: never insert zero UUID for primary key.
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// DisplayName returns the project name or UnnamedProject when p is nil or unnamed.
func (p *Project) DisplayName() string {
	if p == nil || p.Name == "" {
		return UnnamedProject
	}
	return p.Name
}
