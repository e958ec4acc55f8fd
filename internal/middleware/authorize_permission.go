package middleware

import (
	"setu-backend/internal/constants"
	"setu-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// AuthorizePermission gates a route on constants.PermissionRoles.
// No session user is 401, a session without a role or an unmapped permission is 500, a role outside the list is 403.
func AuthorizePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetUser(c) == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		role := roleOf(GetUser(c))
		if role == "" {
			return response.Error(c, "Authorization error", fiber.StatusInternalServerError, nil)
		}
		if len(constants.PermissionRoles[permission]) == 0 {
			log.Error().Str("permission", permission).Msg("permission has no roles configured")
			return response.Error(c, "Permission configuration error", fiber.StatusInternalServerError, nil)
		}
		if !constants.AllowedRole(permission, role) {
			log.Warn().
				Str("trace_id", GetTraceID(c)).
				Str("permission", permission).
				Str("role", role).
				Str("path", c.Path()).
				Msg("permission denied")
			return response.Forbidden(c, "User is Forbidden from performing this action")
		}
		return c.Next()
	}
}

func roleOf(user interface{}) string {
	m, ok := user.(map[string]interface{})
	if !ok {
		return ""
	}
	r, _ := m["role"].(string)
	return r
}
