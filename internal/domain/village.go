package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Village is a monitored gram panchayat village. Villages are never hard-deleted; IsActive=false hides them.
type Village struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name            string          `gorm:"column:name;not null" json:"name"`
	State           string          `gorm:"column:state;not null;index" json:"state"`
	District        string          `gorm:"column:district;not null;index" json:"district"`
	Block           string          `gorm:"column:block" json:"block"`
	Population      int             `gorm:"column:population;not null;default:0" json:"population"`
	BaselineMetrics BaselineMetrics `gorm:"column:baseline_metrics;type:jsonb" json:"baseline_metrics"`
	IsActive        bool            `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt       time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (Village) TableName() string {
	return "villages"
}

func (v *Village) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
