package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PriorityVote is a villager infrastructure request that accumulates votes.
// Once converted, ConvertedProjectID points at the project created from it; the vote itself is kept.
type PriorityVote struct {
	ID                     uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	VillageID              uuid.UUID  `gorm:"column:village_id;type:uuid;not null;index" json:"village_id"`
	RequiredInfrastructure string     `gorm:"column:required_infrastructure;not null" json:"required_infrastructure"`
	Category               string     `gorm:"column:category;not null" json:"category"`
	TotalVotes             int        `gorm:"column:total_votes;not null;default:0" json:"total_votes"`
	IsVolunteer            bool       `gorm:"column:is_volunteer;not null;default:false" json:"is_volunteer"`
	VolunteerID            *string    `gorm:"column:volunteer_id" json:"volunteer_id"`
	EmployeeID             *string    `gorm:"column:employee_id" json:"employee_id"`
	ConvertedProjectID     *uuid.UUID `gorm:"column:converted_project_id;type:uuid" json:"converted_project_id"`
	CreatedAt              time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt              time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (PriorityVote) TableName() string {
	return "priority_votes"
}

func (v *PriorityVote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
