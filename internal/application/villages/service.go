package villages

import (
	"context"
	"errors"
	"strings"

	"setu-backend/internal/application/scoring"
	"setu-backend/internal/domain"
	"setu-backend/internal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var (
	ErrVillageNotFound = apperror.NotFound("Village not found")
	ErrNameRequired    = apperror.Invalid("Name, state and district are required")
	ErrPopulation      = apperror.Invalid("Population must not be negative")
)

type Service struct {
	DB     *gorm.DB
	Scores scoring.Recomputer
}

type CreateInput struct {
	Name            string
	State           string
	District        string
	Block           string
	Population      int
	BaselineMetrics domain.BaselineMetrics
}

// Filter narrows List. Empty fields match everything; Active nil returns active villages only.
type Filter struct {
	State    string
	District string
	Active   *bool
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Village, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.State = strings.TrimSpace(in.State)
	in.District = strings.TrimSpace(in.District)
	if in.Name == "" || in.State == "" || in.District == "" {
		return nil, ErrNameRequired
	}
	if in.Population < 0 {
		return nil, ErrPopulation
	}
	v := &domain.Village{
		Name:            in.Name,
		State:           in.State,
		District:        in.District,
		Block:           strings.TrimSpace(in.Block),
		Population:      in.Population,
		BaselineMetrics: in.BaselineMetrics,
		IsActive:        true,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(v).Error; err != nil {
			return err
		}
		_, err := s.Scores.Recompute(ctx, tx, v.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("village_id", v.ID.String()).Str("district", v.District).Msg("village created")
	return v, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Village, error) {
	var v domain.Village
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVillageNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (s *Service) List(ctx context.Context, f Filter) ([]domain.Village, error) {
	q := s.DB.WithContext(ctx).Model(&domain.Village{})
	if f.State != "" {
		q = q.Where("LOWER(state) = ?", strings.ToLower(f.State))
	}
	if f.District != "" {
		q = q.Where("LOWER(district) = ?", strings.ToLower(f.District))
	}
	active := true
	if f.Active != nil {
		active = *f.Active
	}
	q = q.Where("is_active = ?", active)

	out := []domain.Village{}
	if err := q.Order("state ASC, district ASC, name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateBaselineMetrics replaces the village's baseline metrics and recomputes its score.
func (s *Service) UpdateBaselineMetrics(ctx context.Context, id uuid.UUID, metrics domain.BaselineMetrics) (*domain.Village, error) {
	for k, v := range metrics {
		if !k.Valid() || v < 0 {
			return nil, apperror.Invalid("Invalid baseline metric " + string(k))
		}
	}
	var v domain.Village
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&v).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVillageNotFound
			}
			return err
		}
		if err := tx.Model(&v).Update("baseline_metrics", metrics).Error; err != nil {
			return err
		}
		v.BaselineMetrics = metrics
		_, err := s.Scores.Recompute(ctx, tx, v.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Scores.Invalidate(ctx, id)
	log.Info().Str("village_id", id.String()).Int("metrics", len(metrics)).Msg("baseline metrics updated")
	return &v, nil
}

// Deactivate hides a village from listings and the leaderboard. History is kept.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	res := s.DB.WithContext(ctx).Model(&domain.Village{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVillageNotFound
	}
	s.Scores.Invalidate(ctx, id)
	log.Info().Str("village_id", id.String()).Msg("village deactivated")
	return nil
}
