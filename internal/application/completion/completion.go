package completion

import (
	"context"
	"errors"
	"math"

	"setu-backend/internal/domain"
	"setu-backend/internal/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrProjectNotFound = apperror.NotFound("Project not found")

// Summary is the completion view of one project.
// Mandatory and optional checkpoints count equally toward Percentage; the mandatory counts are informational.
type Summary struct {
	ProjectID            uuid.UUID `json:"project_id"`
	TotalCheckpoints     int       `json:"total_checkpoints"`
	CompletedCheckpoints int       `json:"completed_checkpoints"`
	MandatoryTotal       int       `json:"mandatory_total"`
	MandatoryCompleted   int       `json:"mandatory_completed"`
	Percentage           int       `json:"completion_percentage"`
}

// Percentage returns round(100*completed/total), rounding half away from zero, and 0 for a project with no checkpoints.
func Percentage(completed, total int) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	if completed >= total {
		return 100
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

type checkpointRow struct {
	ID          uuid.UUID
	IsMandatory bool
	Approved    int64
}

// ProjectCompletion counts checkpoints and those with at least one approved submission.
// db may be a transaction; the count is always fresh.
func ProjectCompletion(ctx context.Context, db *gorm.DB, projectID uuid.UUID) (*Summary, error) {
	var project domain.Project
	if err := db.WithContext(ctx).Select("id").Where("id = ?", projectID).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	var rows []checkpointRow
	err := db.WithContext(ctx).
		Table("checkpoints AS c").
		Select("c.id, c.is_mandatory, COUNT(s.id) AS approved").
		Joins("LEFT JOIN submissions s ON s.checkpoint_id = c.id AND s.status = ?", domain.SubmissionApproved).
		Where("c.project_id = ?", projectID).
		Group("c.id, c.is_mandatory").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := &Summary{ProjectID: projectID, TotalCheckpoints: len(rows)}
	for _, r := range rows {
		if r.IsMandatory {
			out.MandatoryTotal++
		}
		if r.Approved == 0 {
			continue
		}
		out.CompletedCheckpoints++
		if r.IsMandatory {
			out.MandatoryCompleted++
		}
	}
	out.Percentage = Percentage(out.CompletedCheckpoints, out.TotalCheckpoints)
	return out, nil
}

// Refresh recomputes the project's completion and writes the cached column. Call it inside the
// transaction that changed a submission so the cache commits or rolls back with it.
func Refresh(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) (*Summary, error) {
	sum, err := ProjectCompletion(ctx, tx, projectID)
	if err != nil {
		return nil, err
	}
	if err := tx.WithContext(ctx).Model(&domain.Project{}).
		Where("id = ?", projectID).
		Update("completion_percentage", sum.Percentage).Error; err != nil {
		return nil, err
	}
	return sum, nil
}
