package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"setu-backend/internal/domain"
	"setu-backend/internal/infrastructure/database/dbtest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrack(t *testing.T) {
	db := dbtest.New(t)
	v := dbtest.Village(t, db, nil)
	p := dbtest.Project(t, db, v.ID, domain.ProjectInProgress, 3)
	dbtest.Submission(t, db, p.Checkpoints[0], domain.SubmissionApproved)
	dbtest.Submission(t, db, p.Checkpoints[1], domain.SubmissionPending)

	svc := &Service{DB: db}
	out, err := svc.Track(context.Background(), p.PublicToken.String())
	require.NoError(t, err)
	assert.Equal(t, p.Title, out.Title)
	assert.Equal(t, 33, out.CompletionPercentage)
	assert.Equal(t, "Rampur", out.Village)
	require.Len(t, out.Checkpoints, 3)
	assert.True(t, out.Checkpoints[0].IsComplete)
	assert.False(t, out.Checkpoints[1].IsComplete)
	assert.Equal(t, []string{"https://cdn.example.org/evidence.jpg"}, out.RecentImages)

	body, err := json.Marshal(out)
	require.NoError(t, err)
	assert.NotContains(t, string(body), p.ID.String())
	assert.NotContains(t, string(body), v.ID.String())
	assert.NotContains(t, string(body), p.Checkpoints[0].ID.String())
}

func TestTrack_UnknownOrMalformedToken(t *testing.T) {
	svc := &Service{DB: dbtest.New(t)}
	_, err := svc.Track(context.Background(), uuid.New().String())
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = svc.Track(context.Background(), "not-a-token")
	assert.True(t, errors.Is(err, ErrNotFound))
}
