package projects

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"setu-backend/internal/application/completion"
	"setu-backend/internal/application/funds"
	"setu-backend/internal/application/scoring"
	"setu-backend/internal/domain"
	"setu-backend/internal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound  = apperror.NotFound("Project not found")
	ErrVillageNotFound  = apperror.NotFound("Village not found")
	ErrVillageInactive  = apperror.Conflict("Village is not active")
	ErrInvalidType      = apperror.Invalid("Unknown project type")
	ErrInvalidStatus    = apperror.Invalid("Unknown project status")
	ErrTitleRequired    = apperror.Invalid("Title is required")
	ErrNegativeAmount   = apperror.Invalid("Allocated amount must not be negative")
	ErrInvalidDates     = apperror.Invalid("End date must not be before start date")
	ErrCheckpointName   = apperror.Invalid("Checkpoint name is required")
	ErrProjectCompleted = apperror.Conflict("Project is already completed")
	ErrMandatoryPending = apperror.Conflict("Project cannot be completed while mandatory checkpoints are unapproved")
)

// Service manages projects and their checkpoints.
type Service struct {
	DB     *gorm.DB
	Scores scoring.Recomputer
}

type CheckpointInput struct {
	Name          string
	Description   string
	IsMandatory   *bool
	EstimatedDate *time.Time
}

type CreateInput struct {
	VillageID       uuid.UUID
	Title           string
	Description     string
	ProjectType     domain.ProjectType
	AllocatedAmount float64
	StartDate       *time.Time
	EndDate         *time.Time
	// Checkpoints replaces the type's default checklist when non-empty.
	Checkpoints  []CheckpointInput
	SourceVoteID *uuid.UUID
	Actor        string
}

func (in *CreateInput) validate() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return ErrTitleRequired
	}
	if !in.ProjectType.Valid() {
		return ErrInvalidType
	}
	if in.AllocatedAmount < 0 {
		return ErrNegativeAmount
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return ErrInvalidDates
	}
	for _, cp := range in.Checkpoints {
		if strings.TrimSpace(cp.Name) == "" {
			return ErrCheckpointName
		}
	}
	return nil
}

// Create inserts a planned project with its checkpoints and refreshes the village score.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Project, error) {
	var p *domain.Project
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		p, err = CreateInTx(ctx, tx, in)
		if err != nil {
			return err
		}
		_, err = s.Scores.Recompute(ctx, tx, p.VillageID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Scores.Invalidate(ctx, p.VillageID)
	log.Info().
		Str("project_id", p.ID.String()).
		Str("village_id", p.VillageID.String()).
		Str("project_type", string(p.ProjectType)).
		Int("checkpoints", len(p.Checkpoints)).
		Msg("project created")
	return p, nil
}

// CreateInTx creates the project rows inside tx. The caller owns the score recompute.
func CreateInTx(ctx context.Context, tx *gorm.DB, in CreateInput) (*domain.Project, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var village domain.Village
	if err := tx.WithContext(ctx).Select("id", "is_active").Where("id = ?", in.VillageID).First(&village).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVillageNotFound
		}
		return nil, err
	}
	if !village.IsActive {
		return nil, ErrVillageInactive
	}

	p := &domain.Project{
		VillageID:       in.VillageID,
		Title:           in.Title,
		Description:     strings.TrimSpace(in.Description),
		ProjectType:     in.ProjectType,
		Status:          domain.ProjectPlanned,
		AllocatedAmount: in.AllocatedAmount,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		SourceVoteID:    in.SourceVoteID,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}

	inputs := in.Checkpoints
	if len(inputs) == 0 {
		inputs = DefaultCheckpoints(in.ProjectType)
	}
	for i, ci := range inputs {
		cp := newCheckpoint(p.ID, i+1, ci)
		if err := tx.WithContext(ctx).Create(&cp).Error; err != nil {
			return nil, err
		}
		p.Checkpoints = append(p.Checkpoints, cp)
	}

	if in.AllocatedAmount > 0 {
		if _, err := funds.AppendAllocation(ctx, tx, p.ID, in.AllocatedAmount, "Initial sanction", in.Actor); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func newCheckpoint(projectID uuid.UUID, order int, in CheckpointInput) domain.Checkpoint {
	mandatory := true
	if in.IsMandatory != nil {
		mandatory = *in.IsMandatory
	}
	return domain.Checkpoint{
		ProjectID:     projectID,
		SequenceOrder: order,
		Name:          strings.TrimSpace(in.Name),
		Description:   strings.TrimSpace(in.Description),
		IsMandatory:   mandatory,
		EstimatedDate: in.EstimatedDate,
	}
}

// Get returns a project with its checkpoints in sequence order.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	var p domain.Project
	err := s.DB.WithContext(ctx).
		Preload("Checkpoints", func(db *gorm.DB) *gorm.DB { return db.Order("sequence_order ASC") }).
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListByVillage returns the village's projects, newest first, optionally filtered by status.
func (s *Service) ListByVillage(ctx context.Context, villageID uuid.UUID, status string) ([]domain.Project, error) {
	db := s.DB.WithContext(ctx)
	var n int64
	if err := db.Model(&domain.Village{}).Where("id = ?", villageID).Count(&n).Error; err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrVillageNotFound
	}
	q := db.Where("village_id = ?", villageID)
	if status != "" {
		st := domain.ProjectStatus(status)
		if !st.Valid() {
			return nil, ErrInvalidStatus
		}
		q = q.Where("status = ?", st)
	}
	out := []domain.Project{}
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatus moves a project along its lifecycle.
// Completing a project requires every mandatory checkpoint to have an approved submission.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ProjectStatus) (*domain.Project, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	var p domain.Project
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProjectNotFound
			}
			return err
		}
		if !p.Status.CanTransition(status) {
			return apperror.Conflict(fmt.Sprintf("Cannot move project from %s to %s", p.Status, status))
		}
		if status == domain.ProjectCompleted {
			sum, err := completion.ProjectCompletion(ctx, tx, p.ID)
			if err != nil {
				return err
			}
			if sum.MandatoryCompleted < sum.MandatoryTotal {
				return ErrMandatoryPending
			}
		}
		res := tx.Model(&domain.Project{}).
			Where("id = ? AND status = ?", p.ID, p.Status).
			Update("status", status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.Conflict("Project status changed concurrently")
		}
		log.Info().
			Str("project_id", p.ID.String()).
			Str("from", string(p.Status)).
			Str("to", string(status)).
			Msg("project status changed")
		p.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// AddCheckpoint appends a checkpoint after the current last one.
func (s *Service) AddCheckpoint(ctx context.Context, projectID uuid.UUID, in CheckpointInput) (*domain.Checkpoint, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, ErrCheckpointName
	}
	var (
		cp        domain.Checkpoint
		villageID uuid.UUID
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p domain.Project
		if err := tx.Select("id", "village_id", "status").Where("id = ?", projectID).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProjectNotFound
			}
			return err
		}
		if p.Status.IsTerminal() {
			return ErrProjectCompleted
		}
		var last int
		if err := tx.Model(&domain.Checkpoint{}).
			Select("COALESCE(MAX(sequence_order), 0)").
			Where("project_id = ?", projectID).
			Scan(&last).Error; err != nil {
			return err
		}
		cp = newCheckpoint(projectID, last+1, in)
		if err := tx.Create(&cp).Error; err != nil {
			return err
		}
		if _, err := completion.Refresh(ctx, tx, projectID); err != nil {
			return err
		}
		villageID = p.VillageID
		_, err := s.Scores.Recompute(ctx, tx, villageID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Scores.Invalidate(ctx, villageID)
	return &cp, nil
}

// Completion returns the fresh completion summary of a project.
func (s *Service) Completion(ctx context.Context, id uuid.UUID) (*completion.Summary, error) {
	sum, err := completion.ProjectCompletion(ctx, s.DB, id)
	if errors.Is(err, completion.ErrProjectNotFound) {
		return nil, ErrProjectNotFound
	}
	return sum, err
}
