// Package dbtest builds migrated in-memory databases and fixtures for package tests.
package dbtest

import (
	"fmt"
	"testing"
	"time"

	"setu-backend/internal/domain"
	"setu-backend/internal/infrastructure/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// New returns a fresh migrated SQLite database private to t.
func New(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// Village inserts an active village with the given baseline metrics.
func Village(t *testing.T, db *gorm.DB, metrics domain.BaselineMetrics) *domain.Village {
	t.Helper()
	v := &domain.Village{
		Name:            "Rampur",
		State:           "Uttar Pradesh",
		District:        "Sitapur",
		Block:           "Misrikh",
		Population:      2400,
		BaselineMetrics: metrics,
		IsActive:        true,
	}
	require.NoError(t, db.Create(v).Error)
	return v
}

// Project inserts a project with n mandatory checkpoints numbered from 1.
func Project(t *testing.T, db *gorm.DB, villageID uuid.UUID, status domain.ProjectStatus, n int) *domain.Project {
	t.Helper()
	p := &domain.Project{
		VillageID:   villageID,
		Title:       "Community health sub-centre",
		ProjectType: domain.ProjectTypeHealthcare,
		Status:      status,
	}
	require.NoError(t, db.Create(p).Error)
	for i := 1; i <= n; i++ {
		cp := domain.Checkpoint{
			ProjectID:     p.ID,
			SequenceOrder: i,
			Name:          fmt.Sprintf("Stage %d", i),
			IsMandatory:   true,
		}
		require.NoError(t, db.Create(&cp).Error)
		p.Checkpoints = append(p.Checkpoints, cp)
	}
	return p
}

// Submission inserts a submission on cp with one image and the given status.
func Submission(t *testing.T, db *gorm.DB, cp domain.Checkpoint, status domain.SubmissionStatus) *domain.Submission {
	t.Helper()
	s := &domain.Submission{
		CheckpointID: cp.ID,
		Status:       status,
		SubmittedBy:  "field-officer",
		SubmittedAt:  time.Now().UTC(),
		Media: []domain.Media{
			{URL: "https://cdn.example.org/evidence.jpg", MediaType: domain.MediaImage},
		},
	}
	require.NoError(t, db.Create(s).Error)
	return s
}
