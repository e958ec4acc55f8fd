package constants

import (
	"testing"

	roles "setu-backend/internal/pkg/constants"

	"github.com/stretchr/testify/assert"
)

func TestAllowedRole(t *testing.T) {
	assert.True(t, AllowedRole(ReviewSubmissions, roles.Employee))
	assert.False(t, AllowedRole(ReviewSubmissions, roles.Volunteer))
	assert.True(t, AllowedRole(SubmitEvidence, roles.Volunteer))
	assert.False(t, AllowedRole(ManageUsers, roles.Officer))
	assert.False(t, AllowedRole("unknown_permission", roles.Admin))
}

func TestEveryPermissionHasRoles(t *testing.T) {
	for perm, allowed := range PermissionRoles {
		assert.NotEmpty(t, allowed, perm)
		for _, r := range allowed {
			assert.True(t, roles.IsValidRole(r), "%s grants unknown role %s", perm, r)
		}
	}
}
