package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Submission is field evidence for a checkpoint. Reviewed submissions are kept for audit;
// a requires_revision outcome is answered by a new submission on the same checkpoint.
type Submission struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CheckpointID uuid.UUID        `gorm:"column:checkpoint_id;type:uuid;not null;index;uniqueIndex:idx_submission_client" json:"checkpoint_id"`
	Status       SubmissionStatus `gorm:"column:status;type:varchar(20);not null;default:'pending';index" json:"status"`
	SubmittedBy  string           `gorm:"column:submitted_by;not null" json:"submitted_by"`
	SubmittedAt  time.Time        `gorm:"column:submitted_at;not null" json:"submitted_at"`
	Notes        *string          `gorm:"column:notes" json:"notes"`
	ReviewNotes  *string          `gorm:"column:review_notes" json:"review_notes"`
	ReviewedBy   *string          `gorm:"column:reviewed_by" json:"reviewed_by"`
	ReviewedAt   *time.Time       `gorm:"column:reviewed_at" json:"reviewed_at"`
	ClientID     *string          `gorm:"column:client_id;uniqueIndex:idx_submission_client" json:"client_id"`
	Latitude     *float64         `gorm:"column:latitude" json:"latitude"`
	Longitude    *float64         `gorm:"column:longitude" json:"longitude"`
	CreatedAt    time.Time        `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time        `gorm:"column:updated_at" json:"updated_at"`

	Media []Media `gorm:"foreignKey:SubmissionID" json:"media"`
}

func (Submission) TableName() string {
	return "submissions"
}

func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = SubmissionPending
	}
	return nil
}

// Media is a stored evidence file attached to a submission. Only the URL returned by storage is kept.
type Media struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SubmissionID uuid.UUID `gorm:"column:submission_id;type:uuid;not null;index" json:"submission_id"`
	URL          string    `gorm:"column:url;not null" json:"url"`
	MediaType    MediaType `gorm:"column:media_type;type:varchar(16);not null" json:"media_type"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Media) TableName() string {
	return "submission_media"
}

func (m *Media) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
