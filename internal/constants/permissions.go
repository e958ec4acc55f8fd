package constants

const (
	ViewData          = "view_data"
	ManageVillages    = "manage_villages"
	ManageProjects    = "manage_projects"
	SubmitEvidence    = "submit_evidence"
	ReviewSubmissions = "review_submissions"
	ManageFunds       = "manage_funds"
	CastVote          = "cast_vote"
	ConvertVotes      = "convert_votes"
	RecomputeScores   = "recompute_scores"
	ManageUsers       = "manage_users"
)
