package constants

import roles "setu-backend/internal/pkg/constants"

// PermissionRoles maps each permission to the roles allowed to perform it.
var PermissionRoles = map[string][]string{
	ViewData:          {roles.Viewer, roles.Volunteer, roles.Employee, roles.Officer, roles.Admin},
	ManageVillages:    {roles.Officer, roles.Admin},
	ManageProjects:    {roles.Officer, roles.Admin},
	SubmitEvidence:    {roles.Volunteer, roles.Employee, roles.Officer, roles.Admin},
	ReviewSubmissions: {roles.Employee, roles.Officer, roles.Admin},
	ManageFunds:       {roles.Officer, roles.Admin},
	CastVote:          {roles.Volunteer, roles.Employee, roles.Officer, roles.Admin},
	ConvertVotes:      {roles.Officer, roles.Admin},
	RecomputeScores:   {roles.Admin},
	ManageUsers:       {roles.Admin},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission, role string) bool {
	allowed, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
