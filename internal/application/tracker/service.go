package tracker

import (
	"context"
	"errors"
	"time"

	"setu-backend/internal/application/completion"
	"setu-backend/internal/domain"
	"setu-backend/internal/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const recentImageLimit = 6

var ErrNotFound = apperror.NotFound("Project not found")

// Service serves the public, read-only view of a project keyed by its public token.
type Service struct {
	DB *gorm.DB
}

// PublicCheckpoint carries no identifiers.
type PublicCheckpoint struct {
	SequenceOrder int        `json:"sequence_order"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	IsMandatory   bool       `json:"is_mandatory"`
	EstimatedDate *time.Time `json:"estimated_date"`
	IsComplete    bool       `json:"is_complete"`
}

// PublicProject is what villagers see on the tracker page.
type PublicProject struct {
	Title                string               `json:"title"`
	Status               domain.ProjectStatus `json:"status"`
	ProjectType          domain.ProjectType   `json:"project_type"`
	CompletionPercentage int                  `json:"completion_percentage"`
	Village              string               `json:"village"`
	District             string               `json:"district"`
	StartDate            *time.Time           `json:"start_date"`
	EndDate              *time.Time           `json:"end_date"`
	Checkpoints          []PublicCheckpoint   `json:"checkpoints"`
	RecentImages         []string             `json:"recent_images"`
}

type checkpointState struct {
	ID       uuid.UUID
	Approved int64
}

// Track resolves a public token. Malformed and unknown tokens both report NotFound.
func (s *Service) Track(ctx context.Context, token string) (*PublicProject, error) {
	publicToken, err := uuid.Parse(token)
	if err != nil {
		return nil, ErrNotFound
	}
	db := s.DB.WithContext(ctx)

	var p domain.Project
	err = db.Preload("Checkpoints", func(db *gorm.DB) *gorm.DB { return db.Order("sequence_order ASC") }).
		Where("public_token = ?", publicToken).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var village domain.Village
	if err := db.Select("name", "district").Where("id = ?", p.VillageID).First(&village).Error; err != nil {
		return nil, err
	}

	var states []checkpointState
	err = db.Table("checkpoints AS c").
		Select("c.id, COUNT(s.id) AS approved").
		Joins("LEFT JOIN submissions s ON s.checkpoint_id = c.id AND s.status = ?", domain.SubmissionApproved).
		Where("c.project_id = ?", p.ID).
		Group("c.id").
		Scan(&states).Error
	if err != nil {
		return nil, err
	}
	done := make(map[uuid.UUID]bool, len(states))
	completed := 0
	for _, st := range states {
		if st.Approved > 0 {
			done[st.ID] = true
			completed++
		}
	}

	out := &PublicProject{
		Title:                p.Title,
		Status:               p.Status,
		ProjectType:          p.ProjectType,
		CompletionPercentage: completion.Percentage(completed, len(p.Checkpoints)),
		Village:              village.Name,
		District:             village.District,
		StartDate:            p.StartDate,
		EndDate:              p.EndDate,
		Checkpoints:          make([]PublicCheckpoint, 0, len(p.Checkpoints)),
		RecentImages:         []string{},
	}
	for _, cp := range p.Checkpoints {
		out.Checkpoints = append(out.Checkpoints, PublicCheckpoint{
			SequenceOrder: cp.SequenceOrder,
			Name:          cp.Name,
			Description:   cp.Description,
			IsMandatory:   cp.IsMandatory,
			EstimatedDate: cp.EstimatedDate,
			IsComplete:    done[cp.ID],
		})
	}

	// only evidence that passed review is published
	err = db.Table("submission_media AS m").
		Select("m.url").
		Joins("JOIN submissions s ON s.id = m.submission_id").
		Joins("JOIN checkpoints c ON c.id = s.checkpoint_id").
		Where("c.project_id = ? AND s.status = ? AND m.media_type = ?", p.ID, domain.SubmissionApproved, domain.MediaImage).
		Order("s.reviewed_at DESC, m.created_at DESC").
		Limit(recentImageLimit).
		Pluck("m.url", &out.RecentImages).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
