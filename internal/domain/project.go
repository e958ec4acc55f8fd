package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project is a unit of sanctioned work in a village, tracked through ordered checkpoints.
// AllocatedAmount and UtilizedAmount mirror the fund ledger and are only written by the funds service.
// CompletionPercentage is a cache refreshed from approved submissions.
type Project struct {
	ID                   uuid.UUID     `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	VillageID            uuid.UUID     `gorm:"column:village_id;type:uuid;not null;index" json:"village_id"`
	Title                string        `gorm:"column:title;not null" json:"title"`
	Description          string        `gorm:"column:description" json:"description"`
	ProjectType          ProjectType   `gorm:"column:project_type;type:varchar(32);not null" json:"project_type"`
	Status               ProjectStatus `gorm:"column:status;type:varchar(20);not null;default:'planned'" json:"status"`
	AllocatedAmount      float64       `gorm:"column:allocated_amount;type:decimal(18,2);not null;default:0" json:"allocated_amount"`
	UtilizedAmount       float64       `gorm:"column:utilized_amount;type:decimal(18,2);not null;default:0" json:"utilized_amount"`
	CompletionPercentage int           `gorm:"column:completion_percentage;not null;default:0" json:"completion_percentage"`
	StartDate            *time.Time    `gorm:"column:start_date" json:"start_date"`
	EndDate              *time.Time    `gorm:"column:end_date" json:"end_date"`
	PublicToken          uuid.UUID     `gorm:"column:public_token;type:uuid;not null;uniqueIndex" json:"public_token"`
	SourceVoteID         *uuid.UUID    `gorm:"column:source_vote_id;type:uuid" json:"source_vote_id"`
	CreatedAt            time.Time     `gorm:"column:created_at" json:"created_at"`
	UpdatedAt            time.Time     `gorm:"column:updated_at" json:"updated_at"`

	Checkpoints []Checkpoint `gorm:"foreignKey:ProjectID" json:"checkpoints,omitempty"`
}

func (Project) TableName() string {
	return "projects"
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.PublicToken == uuid.Nil {
		p.PublicToken = uuid.New()
	}
	if p.Status == "" {
		p.Status = ProjectPlanned
	}
	return nil
}

// Checkpoint is a milestone of a project. SequenceOrder is 1-based and unique within the project.
type Checkpoint struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ProjectID     uuid.UUID  `gorm:"column:project_id;type:uuid;not null;uniqueIndex:idx_checkpoint_sequence" json:"project_id"`
	SequenceOrder int        `gorm:"column:sequence_order;not null;uniqueIndex:idx_checkpoint_sequence" json:"sequence_order"`
	Name          string     `gorm:"column:name;not null" json:"name"`
	Description   string     `gorm:"column:description" json:"description"`
	IsMandatory   bool       `gorm:"column:is_mandatory;not null" json:"is_mandatory"`
	EstimatedDate *time.Time `gorm:"column:estimated_date" json:"estimated_date"`
	CreatedAt     time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (Checkpoint) TableName() string {
	return "checkpoints"
}

func (c *Checkpoint) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
