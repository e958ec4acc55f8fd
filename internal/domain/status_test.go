package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProjectStatus_CanTransition(t *testing.T) {
	cases := []struct {
		from, to ProjectStatus
		want     bool
	}{
		{ProjectPlanned, ProjectSanctioned, true},
		{ProjectSanctioned, ProjectInProgress, true},
		{ProjectInProgress, ProjectCompleted, true},
		{ProjectPlanned, ProjectInProgress, false},
		{ProjectPlanned, ProjectCompleted, false},
		{ProjectInProgress, ProjectOnHold, true},
		{ProjectOnHold, ProjectInProgress, true},
		{ProjectOnHold, ProjectCompleted, false},
		{ProjectCompleted, ProjectOnHold, false},
		{ProjectCompleted, ProjectInProgress, false},
		{ProjectPlanned, ProjectPlanned, false},
		{ProjectPlanned, ProjectStatus("cancelled"), false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestProjectStatus_IsTerminal(t *testing.T) {
	assert.True(t, ProjectCompleted.IsTerminal())
	assert.False(t, ProjectOnHold.IsTerminal())
}

func TestSubmissionStatus_IsReviewOutcome(t *testing.T) {
	assert.True(t, SubmissionApproved.IsReviewOutcome())
	assert.True(t, SubmissionRejected.IsReviewOutcome())
	assert.True(t, SubmissionRequiresRevision.IsReviewOutcome())
	assert.False(t, SubmissionPending.IsReviewOutcome())
	assert.False(t, SubmissionStatus("done").IsReviewOutcome())
}

func TestEnumsValid(t *testing.T) {
	assert.True(t, ProjectTypeWaterSupply.Valid())
	assert.False(t, ProjectType("bridge").Valid())
	assert.True(t, MediaDocument.Valid())
	assert.False(t, MediaType("audio").Valid())
	assert.True(t, TransactionRelease.Valid())
	assert.False(t, TransactionType("refund").Valid())
}
