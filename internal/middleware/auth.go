package middleware

import (
	"setu-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const userLocal = "user"

// RequireAuth ensures a user is in the session. Returns 401 with standard error format if not.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals(userLocal) == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		return c.Next()
	}
}

// GetUser returns the session user from Locals (nil if not logged in).
func GetUser(c *fiber.Ctx) interface{} {
	return c.Locals(userLocal)
}

// CurrentUser decodes the session user; ok is false when nobody is logged in.
func CurrentUser(c *fiber.Ctx) (SessionUser, bool) {
	m, ok := GetUser(c).(map[string]interface{})
	if !ok {
		return SessionUser{}, false
	}
	u := SessionUser{}
	u.UserID, _ = m["user_id"].(string)
	u.Fullname, _ = m["fullname"].(string)
	u.Email, _ = m["email"].(string)
	u.Role, _ = m["role"].(string)
	return u, u.UserID != ""
}
