package votes

import (
	"context"
	"errors"
	"strings"

	"setu-backend/internal/application/projects"
	"setu-backend/internal/application/scoring"
	"setu-backend/internal/domain"
	"setu-backend/internal/infrastructure/database"
	"setu-backend/internal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrVoteNotFound     = apperror.NotFound("Priority vote not found")
	ErrVillageNotFound  = apperror.NotFound("Village not found")
	ErrFieldsRequired   = apperror.Invalid("Required infrastructure and category are required")
	ErrAlreadyConverted = apperror.Conflict("Priority vote has already been converted to a project")
)

// Service records villager priority requests and turns popular ones into projects.
type Service struct {
	DB     *gorm.DB
	Scores scoring.Recomputer
}

type CreateInput struct {
	VillageID              uuid.UUID
	RequiredInfrastructure string
	Category               string
	IsVolunteer            bool
	VolunteerID            *string
	EmployeeID             *string
}

// ConvertInput overrides the project details derived from the vote.
type ConvertInput struct {
	VoteID          uuid.UUID
	Title           string
	ProjectType     domain.ProjectType
	AllocatedAmount float64
	Actor           string
}

// Create opens a request with one vote from its author.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.PriorityVote, error) {
	in.RequiredInfrastructure = strings.TrimSpace(in.RequiredInfrastructure)
	in.Category = strings.TrimSpace(in.Category)
	if in.RequiredInfrastructure == "" || in.Category == "" {
		return nil, ErrFieldsRequired
	}
	v := &domain.PriorityVote{
		VillageID:              in.VillageID,
		RequiredInfrastructure: in.RequiredInfrastructure,
		Category:               in.Category,
		TotalVotes:             1,
		IsVolunteer:            in.IsVolunteer,
		VolunteerID:            in.VolunteerID,
		EmployeeID:             in.EmployeeID,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&domain.Village{}).Where("id = ?", in.VillageID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrVillageNotFound
		}
		if err := tx.Create(v).Error; err != nil {
			return err
		}
		_, err := s.Scores.Recompute(ctx, tx, in.VillageID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Scores.Invalidate(ctx, in.VillageID)
	return v, nil
}

// ListByVillage returns requests with the most votes first.
func (s *Service) ListByVillage(ctx context.Context, villageID uuid.UUID) ([]domain.PriorityVote, error) {
	out := []domain.PriorityVote{}
	err := s.DB.WithContext(ctx).
		Where("village_id = ?", villageID).
		Order("total_votes DESC, created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Upvote adds one vote atomically.
func (s *Service) Upvote(ctx context.Context, id uuid.UUID) (*domain.PriorityVote, error) {
	var v domain.PriorityVote
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.PriorityVote{}).Where("id = ?", id).
			UpdateColumn("total_votes", gorm.Expr("total_votes + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrVoteNotFound
		}
		if err := tx.Where("id = ?", id).First(&v).Error; err != nil {
			return err
		}
		_, err := s.Scores.Recompute(ctx, tx, v.VillageID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Scores.Invalidate(ctx, v.VillageID)
	return &v, nil
}

// ConvertToProject creates a planned project from the vote and links the two. A vote converts once.
func (s *Service) ConvertToProject(ctx context.Context, in ConvertInput) (*domain.Project, error) {
	var (
		project *domain.Project
		vote    domain.PriorityVote
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		if database.IsPostgres(tx) {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.Where("id = ?", in.VoteID).First(&vote).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVoteNotFound
			}
			return err
		}
		if vote.ConvertedProjectID != nil {
			return ErrAlreadyConverted
		}

		title := strings.TrimSpace(in.Title)
		if title == "" {
			title = vote.RequiredInfrastructure
		}
		projectType := in.ProjectType
		if projectType == "" {
			projectType = typeForCategory(vote.Category)
		}
		var err error
		project, err = projects.CreateInTx(ctx, tx, projects.CreateInput{
			VillageID:       vote.VillageID,
			Title:           title,
			Description:     "Raised by villagers through priority voting (" + vote.Category + ")",
			ProjectType:     projectType,
			AllocatedAmount: in.AllocatedAmount,
			SourceVoteID:    &vote.ID,
			Actor:           in.Actor,
		})
		if err != nil {
			return err
		}
		res := tx.Model(&domain.PriorityVote{}).
			Where("id = ? AND converted_project_id IS NULL", vote.ID).
			Update("converted_project_id", project.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyConverted
		}
		_, err = s.Scores.Recompute(ctx, tx, vote.VillageID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Scores.Invalidate(ctx, vote.VillageID)
	log.Info().
		Str("vote_id", vote.ID.String()).
		Str("project_id", project.ID.String()).
		Int("total_votes", vote.TotalVotes).
		Msg("priority vote converted to project")
	return project, nil
}

// typeForCategory maps a free-text vote category onto a project type.
func typeForCategory(category string) domain.ProjectType {
	c := strings.ToLower(strings.TrimSpace(category))
	switch {
	case domain.ProjectType(c).Valid():
		return domain.ProjectType(c)
	case strings.Contains(c, "water"):
		return domain.ProjectTypeWaterSupply
	case strings.Contains(c, "school") || strings.Contains(c, "educat"):
		return domain.ProjectTypeEducation
	case strings.Contains(c, "health") || strings.Contains(c, "hospital"):
		return domain.ProjectTypeHealthcare
	case strings.Contains(c, "road"):
		return domain.ProjectTypeRoad
	case strings.Contains(c, "livelihood") || strings.Contains(c, "employment"):
		return domain.ProjectTypeLivelihood
	}
	return domain.ProjectTypeInfrastructure
}
