package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FundTransaction is an append-only ledger entry against a project.
type FundTransaction struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ProjectID       uuid.UUID       `gorm:"column:project_id;type:uuid;not null;index" json:"project_id"`
	TransactionType TransactionType `gorm:"column:transaction_type;type:varchar(20);not null" json:"transaction_type"`
	Amount          float64         `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	Description     string          `gorm:"column:description" json:"description"`
	CreatedBy       *string         `gorm:"column:created_by" json:"created_by"`
	CreatedAt       time.Time       `gorm:"column:created_at" json:"created_at"`
}

func (FundTransaction) TableName() string {
	return "fund_transactions"
}

func (t *FundTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
