package funds

import (
	"context"
	"errors"
	"math"
	"strings"

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
	ErrProjectNotFound = apperror.NotFound("Project not found")
	ErrInvalidAmount   = apperror.Invalid("Amount must be greater than zero")
	ErrOverRelease     = apperror.Invalid("Release exceeds the allocated amount")
)

// Service is the fund ledger: every allocation and release is an append-only row,
// mirrored onto the project's allocated/utilized columns in the same transaction.
type Service struct {
	DB     *gorm.DB
	Scores scoring.Recomputer
}

// Totals is the ledger sum for one project.
type Totals struct {
	ProjectID uuid.UUID `json:"project_id"`
	Allocated float64   `json:"allocated"`
	Utilized  float64   `json:"utilized"`
	Remaining float64   `json:"remaining"`
}

type EntryInput struct {
	ProjectID   uuid.UUID
	Amount      float64
	Description string
	Actor       string
}

func (s *Service) Allocate(ctx context.Context, in EntryInput) (*domain.FundTransaction, error) {
	return s.record(ctx, domain.TransactionAllocation, in)
}

// Release moves allocated money to utilized; it cannot exceed what was allocated.
func (s *Service) Release(ctx context.Context, in EntryInput) (*domain.FundTransaction, error) {
	return s.record(ctx, domain.TransactionRelease, in)
}

func (s *Service) record(ctx context.Context, kind domain.TransactionType, in EntryInput) (*domain.FundTransaction, error) {
	if in.Amount <= 0 || math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) {
		return nil, ErrInvalidAmount
	}
	amount := math.Round(in.Amount*100) / 100
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var (
		entry     *domain.FundTransaction
		villageID uuid.UUID
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		if database.IsPostgres(tx) {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var project domain.Project
		if err := q.Where("id = ?", in.ProjectID).First(&project).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProjectNotFound
			}
			return err
		}
		totals, err := sumLedger(tx, project.ID)
		if err != nil {
			return err
		}
		switch kind {
		case domain.TransactionAllocation:
			totals.Allocated += amount
		case domain.TransactionRelease:
			totals.Utilized += amount
			if totals.Utilized > totals.Allocated+0.005 {
				return ErrOverRelease
			}
		}

		entry, err = appendEntry(ctx, tx, project.ID, kind, amount, in.Description, in.Actor)
		if err != nil {
			return err
		}
		if err := tx.Model(&domain.Project{}).Where("id = ?", project.ID).Updates(map[string]interface{}{
			"allocated_amount": totals.Allocated,
			"utilized_amount":  totals.Utilized,
		}).Error; err != nil {
			return err
		}
		villageID = project.VillageID
		_, err = s.Scores.Recompute(ctx, tx, villageID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Scores.Invalidate(ctx, villageID)

	log.Info().
		Str("project_id", in.ProjectID.String()).
		Str("transaction_type", string(kind)).
		Float64("amount", amount).
		Msg("fund ledger entry recorded")
	return entry, nil
}

// AppendAllocation writes an allocation row inside an existing transaction without touching the
// project columns or the score; project creation sets those itself.
func AppendAllocation(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, amount float64, description, actor string) (*domain.FundTransaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return appendEntry(ctx, tx, projectID, domain.TransactionAllocation, amount, description, actor)
}

func appendEntry(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, kind domain.TransactionType, amount float64, description, actor string) (*domain.FundTransaction, error) {
	entry := &domain.FundTransaction{
		ProjectID:       projectID,
		TransactionType: kind,
		Amount:          amount,
		Description:     strings.TrimSpace(description),
	}
	if a := strings.TrimSpace(actor); a != "" {
		entry.CreatedBy = &a
	}
	if err := tx.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

type typeSum struct {
	TransactionType domain.TransactionType
	Total           float64
}

func sumLedger(db *gorm.DB, projectID uuid.UUID) (*Totals, error) {
	var sums []typeSum
	err := db.Model(&domain.FundTransaction{}).
		Select("transaction_type, COALESCE(SUM(amount), 0) AS total").
		Where("project_id = ?", projectID).
		Group("transaction_type").
		Scan(&sums).Error
	if err != nil {
		return nil, err
	}
	out := &Totals{ProjectID: projectID}
	for _, s := range sums {
		switch s.TransactionType {
		case domain.TransactionAllocation:
			out.Allocated = s.Total
		case domain.TransactionRelease:
			out.Utilized = s.Total
		}
	}
	out.Remaining = out.Allocated - out.Utilized
	return out, nil
}

// GetTotals sums the ledger for a project.
func (s *Service) GetTotals(ctx context.Context, projectID uuid.UUID) (*Totals, error) {
	db := s.DB.WithContext(ctx)
	if err := ensureProject(db, projectID); err != nil {
		return nil, err
	}
	return sumLedger(db, projectID)
}

// ListTransactions returns the ledger of a project, oldest first.
func (s *Service) ListTransactions(ctx context.Context, projectID uuid.UUID) ([]domain.FundTransaction, error) {
	db := s.DB.WithContext(ctx)
	if err := ensureProject(db, projectID); err != nil {
		return nil, err
	}
	out := []domain.FundTransaction{}
	if err := db.Where("project_id = ?", projectID).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func ensureProject(db *gorm.DB, projectID uuid.UUID) error {
	var n int64
	if err := db.Model(&domain.Project{}).Where("id = ?", projectID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrProjectNotFound
	}
	return nil
}
