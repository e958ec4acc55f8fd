package villages

import (
	"context"
	"errors"
	"testing"

	"setu-backend/internal/application/scoring"
	"setu-backend/internal/domain"
	"setu-backend/internal/infrastructure/database/dbtest"
	"setu-backend/internal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := dbtest.New(t)
	return &Service{DB: db, Scores: &scoring.Engine{DB: db, Config: scoring.DefaultConfig()}}, db
}

func TestCreateGetList(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()

	v, err := svc.Create(ctx, CreateInput{
		Name: "Khairabad", State: "Uttar Pradesh", District: "Sitapur", Population: 3100,
		BaselineMetrics: domain.BaselineMetrics{domain.MetricSchools: 2},
	})
	require.NoError(t, err)
	assert.True(t, v.IsActive)

	var score domain.AdarshScore
	require.NoError(t, db.First(&score, "village_id = ?", v.ID).Error)
	assert.Equal(t, 12.0, score.InfrastructureScore)

	got, err := svc.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.BaselineMetrics[domain.MetricSchools])

	_, err = svc.Create(ctx, CreateInput{Name: "Barwara", State: "Bihar", District: "Gaya"})
	require.NoError(t, err)

	list, err := svc.List(ctx, Filter{State: "uttar pradesh"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Khairabad", list[0].Name)

	_, err = svc.Create(ctx, CreateInput{Name: "x"})
	assert.True(t, errors.Is(err, ErrNameRequired))
	_, err = svc.Get(ctx, uuid.New())
	assert.True(t, errors.Is(err, ErrVillageNotFound))
}

func TestUpdateBaselineMetrics_Recomputes(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()
	v := dbtest.Village(t, db, nil)

	_, err := svc.UpdateBaselineMetrics(ctx, v.ID, domain.BaselineMetrics{
		domain.MetricLiteracyRate:   60,
		domain.MetricEmploymentRate: 40,
	})
	require.NoError(t, err)

	var score domain.AdarshScore
	require.NoError(t, db.First(&score, "village_id = ?", v.ID).Error)
	assert.Equal(t, 35.0, score.SocialIndicatorsScore)

	_, err = svc.UpdateBaselineMetrics(ctx, v.ID, domain.BaselineMetrics{"gdp": 1})
	assert.Equal(t, apperror.KindInvalidInput, apperror.KindOf(err))
	_, err = svc.UpdateBaselineMetrics(ctx, uuid.New(), nil)
	assert.True(t, errors.Is(err, ErrVillageNotFound))
}

func TestDeactivate(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()
	v := dbtest.Village(t, db, nil)

	require.NoError(t, svc.Deactivate(ctx, v.ID))
	active, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Empty(t, active)

	inactive := false
	hidden, err := svc.List(ctx, Filter{Active: &inactive})
	require.NoError(t, err)
	assert.Len(t, hidden, 1)

	assert.True(t, errors.Is(svc.Deactivate(ctx, uuid.New()), ErrVillageNotFound))
}
