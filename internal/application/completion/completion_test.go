package completion

import (
	"context"
	"errors"
	"testing"

	"setu-backend/internal/domain"
	"setu-backend/internal/infrastructure/database/dbtest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0, Percentage(0, 0))
	assert.Equal(t, 0, Percentage(0, 5))
	assert.Equal(t, 33, Percentage(1, 3))
	assert.Equal(t, 67, Percentage(2, 3))
	assert.Equal(t, 13, Percentage(1, 8))
	assert.Equal(t, 60, Percentage(3, 5))
	assert.Equal(t, 100, Percentage(4, 4))
	assert.Equal(t, 100, Percentage(5, 4))
}

func TestPercentage_Monotone(t *testing.T) {
	for total := 1; total <= 20; total++ {
		prev := -1
		for done := 0; done <= total; done++ {
			p := Percentage(done, total)
			assert.GreaterOrEqual(t, p, prev)
			assert.True(t, p >= 0 && p <= 100)
			prev = p
		}
	}
}

func TestProjectCompletion_CountsDistinctApprovedCheckpoints(t *testing.T) {
	db := dbtest.New(t)
	v := dbtest.Village(t, db, nil)
	p := dbtest.Project(t, db, v.ID, domain.ProjectInProgress, 5)

	dbtest.Submission(t, db, p.Checkpoints[0], domain.SubmissionApproved)
	dbtest.Submission(t, db, p.Checkpoints[0], domain.SubmissionApproved)
	dbtest.Submission(t, db, p.Checkpoints[1], domain.SubmissionApproved)
	dbtest.Submission(t, db, p.Checkpoints[2], domain.SubmissionApproved)
	dbtest.Submission(t, db, p.Checkpoints[3], domain.SubmissionRejected)
	dbtest.Submission(t, db, p.Checkpoints[4], domain.SubmissionPending)

	sum, err := ProjectCompletion(context.Background(), db, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, sum.TotalCheckpoints)
	assert.Equal(t, 3, sum.CompletedCheckpoints)
	assert.Equal(t, 60, sum.Percentage)
}

func TestProjectCompletion_NoCheckpoints(t *testing.T) {
	db := dbtest.New(t)
	v := dbtest.Village(t, db, nil)
	p := dbtest.Project(t, db, v.ID, domain.ProjectPlanned, 0)

	sum, err := ProjectCompletion(context.Background(), db, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Percentage)
	assert.Equal(t, 0, sum.TotalCheckpoints)
}

func TestProjectCompletion_MandatoryWeightedEqually(t *testing.T) {
	db := dbtest.New(t)
	v := dbtest.Village(t, db, nil)
	p := dbtest.Project(t, db, v.ID, domain.ProjectInProgress, 1)
	optional := domain.Checkpoint{ProjectID: p.ID, SequenceOrder: 2, Name: "Signboard", IsMandatory: false}
	require.NoError(t, db.Create(&optional).Error)

	dbtest.Submission(t, db, optional, domain.SubmissionApproved)

	sum, err := ProjectCompletion(context.Background(), db, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, sum.Percentage)
	assert.Equal(t, 1, sum.MandatoryTotal)
	assert.Equal(t, 0, sum.MandatoryCompleted)
}

func TestProjectCompletion_NotFound(t *testing.T) {
	db := dbtest.New(t)
	_, err := ProjectCompletion(context.Background(), db, uuid.New())
	assert.True(t, errors.Is(err, ErrProjectNotFound))
}

func TestRefresh_WritesCache(t *testing.T) {
	db := dbtest.New(t)
	v := dbtest.Village(t, db, nil)
	p := dbtest.Project(t, db, v.ID, domain.ProjectInProgress, 4)
	dbtest.Submission(t, db, p.Checkpoints[0], domain.SubmissionApproved)

	_, err := Refresh(context.Background(), db, p.ID)
	require.NoError(t, err)

	var got domain.Project
	require.NoError(t, db.First(&got, "id = ?", p.ID).Error)
	assert.Equal(t, 25, got.CompletionPercentage)
}
