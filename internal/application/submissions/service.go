package submissions

import (
	"context"
	"errors"
	"strings"
	"time"

	"setu-backend/internal/application/completion"
	"setu-backend/internal/application/emails"
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
	ErrCheckpointNotFound  = apperror.NotFound("Checkpoint not found")
	ErrSubmissionNotFound  = apperror.NotFound("Submission not found")
	ErrMediaRequired       = apperror.Invalid("At least one media item is required")
	ErrInvalidMedia        = apperror.Invalid("Media items need a url and a type of image, video or document")
	ErrInvalidLocation     = apperror.Invalid("Latitude must be within -90..90 and longitude within -180..180")
	ErrInvalidStatus       = apperror.Invalid("Review status must be approved, rejected or requires_revision")
	ErrSubmitterRequired   = apperror.Invalid("Submitter is required")
	ErrReviewerRequired    = apperror.Invalid("Reviewer is required")
	ErrApproveWithoutMedia = apperror.Invalid("A submission without media cannot be approved")
	ErrProjectCompleted    = apperror.Conflict("Project is already completed")
	ErrAlreadyReviewed     = apperror.Conflict("Submission has already been reviewed")
)

// errDuplicateClientID marks a lost race on (checkpoint_id, client_id) so the caller can re-read the winner.
var errDuplicateClientID = errors.New("duplicate client id")

// Service runs the checkpoint submission state machine. Mailer is optional; when set the
// submitter is emailed the review decision.
type Service struct {
	DB     *gorm.DB
	Scores scoring.Recomputer
	Mailer emails.Sender
}

type MediaInput struct {
	URL       string
	MediaType domain.MediaType
}

type SubmitInput struct {
	CheckpointID uuid.UUID
	SubmittedBy  string
	Media        []MediaInput
	Notes        *string
	Latitude     *float64
	Longitude    *float64
	ClientID     *string
}

type ReviewInput struct {
	SubmissionID uuid.UUID
	Status       domain.SubmissionStatus
	ReviewerID   string
	ReviewNotes  *string
}

func validateSubmit(in *SubmitInput) error {
	in.SubmittedBy = strings.TrimSpace(in.SubmittedBy)
	if in.SubmittedBy == "" {
		return ErrSubmitterRequired
	}
	if len(in.Media) == 0 {
		return ErrMediaRequired
	}
	for i := range in.Media {
		in.Media[i].URL = strings.TrimSpace(in.Media[i].URL)
		if in.Media[i].URL == "" || !in.Media[i].MediaType.Valid() {
			return ErrInvalidMedia
		}
	}
	if (in.Latitude == nil) != (in.Longitude == nil) {
		return ErrInvalidLocation
	}
	if in.Latitude != nil && (*in.Latitude < -90 || *in.Latitude > 90 || *in.Longitude < -180 || *in.Longitude > 180) {
		return ErrInvalidLocation
	}
	if in.ClientID != nil {
		id := strings.TrimSpace(*in.ClientID)
		if id == "" {
			in.ClientID = nil
		} else {
			in.ClientID = &id
		}
	}
	return nil
}

// Submit records evidence for a checkpoint as a pending submission.
// A repeated (checkpoint, client id) pair returns the submission already stored instead of inserting.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*domain.Submission, error) {
	if err := validateSubmit(&in); err != nil {
		return nil, err
	}

	var out *domain.Submission
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cp domain.Checkpoint
		if err := tx.Where("id = ?", in.CheckpointID).First(&cp).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCheckpointNotFound
			}
			return err
		}
		// A replay of a stored submission succeeds even after the project completed.
		if in.ClientID != nil {
			existing, err := findByClientID(tx, in.CheckpointID, *in.ClientID)
			if err != nil {
				return err
			}
			if existing != nil {
				out = existing
				return nil
			}
		}

		var project domain.Project
		if err := tx.Select("id", "status").Where("id = ?", cp.ProjectID).First(&project).Error; err != nil {
			return err
		}
		if project.Status == domain.ProjectCompleted {
			return ErrProjectCompleted
		}

		sub := &domain.Submission{
			CheckpointID: in.CheckpointID,
			Status:       domain.SubmissionPending,
			SubmittedBy:  in.SubmittedBy,
			SubmittedAt:  time.Now().UTC(),
			Notes:        in.Notes,
			ClientID:     in.ClientID,
			Latitude:     in.Latitude,
			Longitude:    in.Longitude,
		}
		for _, m := range in.Media {
			sub.Media = append(sub.Media, domain.Media{URL: m.URL, MediaType: m.MediaType})
		}
		if err := tx.Create(sub).Error; err != nil {
			if in.ClientID != nil && database.IsUniqueViolation(err) {
				return errDuplicateClientID
			}
			return err
		}
		out = sub
		return nil
	})
	if errors.Is(err, errDuplicateClientID) {
		existing, rerr := findByClientID(s.DB.WithContext(ctx), in.CheckpointID, *in.ClientID)
		if rerr != nil {
			return nil, rerr
		}
		if existing == nil {
			return nil, err
		}
		return existing, nil
	}
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("submission_id", out.ID.String()).
		Str("checkpoint_id", out.CheckpointID.String()).
		Str("status", string(out.Status)).
		Msg("submission recorded")
	return out, nil
}

func findByClientID(db *gorm.DB, checkpointID uuid.UUID, clientID string) (*domain.Submission, error) {
	var sub domain.Submission
	err := db.Preload("Media").
		Where("checkpoint_id = ? AND client_id = ?", checkpointID, clientID).
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Review moves a pending submission to a review outcome. The owning project's completion and the
// village's Adarsh score are refreshed in the same transaction.
func (s *Service) Review(ctx context.Context, in ReviewInput) (*domain.Submission, error) {
	if !in.Status.IsReviewOutcome() {
		return nil, ErrInvalidStatus
	}
	in.ReviewerID = strings.TrimSpace(in.ReviewerID)
	if in.ReviewerID == "" {
		return nil, ErrReviewerRequired
	}

	var (
		sub       domain.Submission
		villageID uuid.UUID
		percent   int
		notice    emails.ReviewNotice
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		if database.IsPostgres(tx) {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.Where("id = ?", in.SubmissionID).First(&sub).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubmissionNotFound
			}
			return err
		}
		if sub.Status != domain.SubmissionPending {
			return ErrAlreadyReviewed
		}
		if err := tx.Where("submission_id = ?", sub.ID).Order("created_at ASC").Find(&sub.Media).Error; err != nil {
			return err
		}
		if in.Status == domain.SubmissionApproved && len(sub.Media) == 0 {
			return ErrApproveWithoutMedia
		}

		now := time.Now().UTC()
		res := tx.Model(&domain.Submission{}).
			Where("id = ? AND status = ?", sub.ID, domain.SubmissionPending).
			Updates(map[string]interface{}{
				"status":       in.Status,
				"reviewed_by":  in.ReviewerID,
				"reviewed_at":  now,
				"review_notes": in.ReviewNotes,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyReviewed
		}
		sub.Status = in.Status
		sub.ReviewedBy = &in.ReviewerID
		sub.ReviewedAt = &now
		sub.ReviewNotes = in.ReviewNotes

		var cp domain.Checkpoint
		if err := tx.Select("id", "project_id", "name").Where("id = ?", sub.CheckpointID).First(&cp).Error; err != nil {
			return err
		}
		var project domain.Project
		if err := tx.Select("id", "village_id", "title").Where("id = ?", cp.ProjectID).First(&project).Error; err != nil {
			return err
		}
		notice = emails.ReviewNotice{ProjectTitle: project.Title, CheckpointName: cp.Name, Status: in.Status}
		if in.ReviewNotes != nil {
			notice.ReviewNotes = *in.ReviewNotes
		}
		summary, err := completion.Refresh(ctx, tx, project.ID)
		if err != nil {
			return err
		}
		percent = summary.Percentage
		villageID = project.VillageID
		_, err = s.Scores.Recompute(ctx, tx, villageID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Scores.Invalidate(ctx, villageID)

	log.Info().
		Str("submission_id", sub.ID.String()).
		Str("status", string(sub.Status)).
		Str("reviewed_by", in.ReviewerID).
		Str("village_id", villageID.String()).
		Int("completion_percentage", percent).
		Msg("submission reviewed")
	s.notifySubmitter(ctx, &sub, notice)
	return &sub, nil
}

// notifySubmitter emails the review outcome. Failures are logged and never fail the review.
func (s *Service) notifySubmitter(ctx context.Context, sub *domain.Submission, notice emails.ReviewNotice) {
	if s.Mailer == nil {
		return
	}
	userID, err := uuid.Parse(sub.SubmittedBy)
	if err != nil {
		return
	}
	var u domain.User
	if err := s.DB.WithContext(ctx).Select("user_id", "email", "fullname").Where("user_id = ?", userID).First(&u).Error; err != nil {
		log.Warn().Err(err).Str("submission_id", sub.ID.String()).Msg("review notice: submitter lookup failed")
		return
	}
	if err := s.Mailer.SendReviewOutcome(ctx, u.Email, u.Fullname, notice); err != nil {
		log.Warn().Err(err).Str("submission_id", sub.ID.String()).Msg("review notice not sent")
	}
}

// Get returns a submission with its media.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	var sub domain.Submission
	if err := s.DB.WithContext(ctx).Preload("Media").Where("id = ?", id).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

// ListByCheckpoint returns every submission of a checkpoint, oldest first.
func (s *Service) ListByCheckpoint(ctx context.Context, checkpointID uuid.UUID) ([]domain.Submission, error) {
	db := s.DB.WithContext(ctx)
	var n int64
	if err := db.Model(&domain.Checkpoint{}).Where("id = ?", checkpointID).Count(&n).Error; err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrCheckpointNotFound
	}
	out := []domain.Submission{}
	err := db.Preload("Media").
		Where("checkpoint_id = ?", checkpointID).
		Order("submitted_at ASC, created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
