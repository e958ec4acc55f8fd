package domain

// ProjectType is the category of work a project delivers.
type ProjectType string

const (
	ProjectTypeInfrastructure ProjectType = "infrastructure"
	ProjectTypeEducation      ProjectType = "education"
	ProjectTypeHealthcare     ProjectType = "healthcare"
	ProjectTypeWaterSupply    ProjectType = "water_supply"
	ProjectTypeRoad           ProjectType = "road"
	ProjectTypeLivelihood     ProjectType = "livelihood"
	ProjectTypeOther          ProjectType = "other"
)

// Valid reports whether t is a known project type.
func (t ProjectType) Valid() bool {
	switch t {
	case ProjectTypeInfrastructure, ProjectTypeEducation, ProjectTypeHealthcare,
		ProjectTypeWaterSupply, ProjectTypeRoad, ProjectTypeLivelihood, ProjectTypeOther:
		return true
	}
	return false
}

// ProjectStatus is the lifecycle state of a project.
//
//	planned -> sanctioned -> in_progress -> completed
//
// on_hold is reachable from every non-terminal state and resumes to planned, sanctioned or in_progress.
type ProjectStatus string

const (
	ProjectPlanned    ProjectStatus = "planned"
	ProjectSanctioned ProjectStatus = "sanctioned"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectOnHold     ProjectStatus = "on_hold"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPlanned, ProjectSanctioned, ProjectInProgress, ProjectCompleted, ProjectOnHold:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (s ProjectStatus) IsTerminal() bool {
	return s == ProjectCompleted
}

// CanTransition reports whether a project may move from s to next.
func (s ProjectStatus) CanTransition(next ProjectStatus) bool {
	if !next.Valid() || s == next {
		return false
	}
	switch s {
	case ProjectPlanned:
		return next == ProjectSanctioned || next == ProjectOnHold
	case ProjectSanctioned:
		return next == ProjectInProgress || next == ProjectOnHold
	case ProjectInProgress:
		return next == ProjectCompleted || next == ProjectOnHold
	case ProjectOnHold:
		return next == ProjectPlanned || next == ProjectSanctioned || next == ProjectInProgress
	case ProjectCompleted:
		return false
	}
	return false
}

// SubmissionStatus is the review state of a checkpoint submission.
// pending is the only non-terminal state; a revision request is answered by a new submission.
type SubmissionStatus string

const (
	SubmissionPending          SubmissionStatus = "pending"
	SubmissionApproved         SubmissionStatus = "approved"
	SubmissionRejected         SubmissionStatus = "rejected"
	SubmissionRequiresRevision SubmissionStatus = "requires_revision"
)

func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionPending, SubmissionApproved, SubmissionRejected, SubmissionRequiresRevision:
		return true
	}
	return false
}

// IsReviewOutcome reports whether s may be the target of a review.
func (s SubmissionStatus) IsReviewOutcome() bool {
	switch s {
	case SubmissionApproved, SubmissionRejected, SubmissionRequiresRevision:
		return true
	case SubmissionPending:
		return false
	}
	return false
}

// MediaType is the kind of evidence attached to a submission.
type MediaType string

const (
	MediaImage    MediaType = "image"
	MediaVideo    MediaType = "video"
	MediaDocument MediaType = "document"
)

func (m MediaType) Valid() bool {
	switch m {
	case MediaImage, MediaVideo, MediaDocument:
		return true
	}
	return false
}

// TransactionType is the kind of fund ledger entry.
type TransactionType string

const (
	TransactionAllocation TransactionType = "allocation"
	TransactionRelease    TransactionType = "release"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionAllocation, TransactionRelease:
		return true
	}
	return false
}
